package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors          int
	PaymentsCreated      int
	PaymentsCompleted    int
	VerificationFailures int
	RefundsIssued        int
	RefundFailures       int
	GatewayTimeouts      int
	WebhooksRejected     int
	WebhookDuplicates    int
	UnsettledOrders      int
	OrderActivity        map[string]int
	ErrorPatterns        map[string]int
}

var (
	// INFO: 2024/04/01 10:00:00 payment_service.go:120: message
	linePrefix = regexp.MustCompile(`^[A-Z]+: \S+ \S+ [^:]+:\d+: `)
	orderRegex = regexp.MustCompile(`\border (ORD[\w-]*|[\w-]{6,})`)
	idRegex    = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|\b(order|pay|rfnd|evt)_\w+|\d+(\.\d+)?`)
)

func main() {
	logDir := flag.String("dir", envOr("LOG_DIR", "logs"), "directory holding the dated log files")
	day := flag.String("date", time.Now().Format("2006-01-02"), "day to analyze (YYYY-MM-DD)")
	flag.Parse()

	stats := &LogStats{
		OrderActivity: make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(*logDir, fmt.Sprintf("error-%s.log", *day)), stats)
	analyzeInfoLogs(filepath.Join(*logDir, fmt.Sprintf("info-%s.log", *day)), stats)

	printReport(*day, stats)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func scanLines(logFile string, fn func(msg string)) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(linePrefix.ReplaceAllString(scanner.Text(), ""))
	}
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	scanLines(logFile, func(msg string) {
		if strings.HasPrefix(msg, "Stack Trace") || strings.HasPrefix(msg, "\t") || msg == "" {
			return
		}
		stats.TotalErrors++

		switch {
		case strings.Contains(msg, "Verification failed for payment"):
			stats.VerificationFailures++
		case strings.Contains(msg, "Gateway refund failed"):
			stats.RefundFailures++
		case strings.Contains(msg, "timed out"):
			stats.GatewayTimeouts++
		case strings.Contains(msg, "Webhook rejected"):
			stats.WebhooksRejected++
		case strings.Contains(msg, "reconciliation required"):
			stats.UnsettledOrders++
		}

		extractOrderActivity(msg, stats)
		extractErrorPattern(msg, stats)
	})
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	scanLines(logFile, func(msg string) {
		switch {
		case strings.HasPrefix(msg, "Payment ") && strings.Contains(msg, " created for order "):
			stats.PaymentsCreated++
		case strings.HasPrefix(msg, "Payment ") && strings.Contains(msg, " completed for order "):
			stats.PaymentsCompleted++
		case strings.HasPrefix(msg, "Payment ") && strings.Contains(msg, " refunded, refund id "):
			stats.RefundsIssued++
		case strings.Contains(msg, "already handled with status"):
			stats.WebhookDuplicates++
		default:
			return
		}
		extractOrderActivity(msg, stats)
	})
}

func extractOrderActivity(msg string, stats *LogStats) {
	if m := orderRegex.FindStringSubmatch(msg); m != nil {
		stats.OrderActivity[m[1]]++
	}
}

// extractErrorPattern collapses ids and amounts so similar errors group together
func extractErrorPattern(msg string, stats *LogStats) {
	pattern := msg
	if i := strings.Index(pattern, ": "); i > 0 {
		pattern = pattern[:i]
	}
	pattern = idRegex.ReplaceAllString(pattern, "*")
	stats.ErrorPatterns[strings.TrimSpace(pattern)]++
}

func printReport(day string, stats *LogStats) {
	fmt.Println("\n=== Payment Log Analysis Report ===")
	fmt.Println("Log date:", day)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Payment Lifecycle:")
	fmt.Printf("   Payments Created: %d\n", stats.PaymentsCreated)
	fmt.Printf("   Payments Completed: %d\n", stats.PaymentsCompleted)
	fmt.Printf("   Verification Failures: %d\n", stats.VerificationFailures)
	fmt.Printf("   Refunds Issued: %d\n", stats.RefundsIssued)
	fmt.Printf("   Refund Failures: %d\n", stats.RefundFailures)

	fmt.Println("\n2. Gateway and Webhooks:")
	fmt.Printf("   Gateway Timeouts: %d\n", stats.GatewayTimeouts)
	fmt.Printf("   Webhooks Rejected: %d\n", stats.WebhooksRejected)
	fmt.Printf("   Duplicate Webhooks: %d\n", stats.WebhookDuplicates)
	fmt.Printf("   Orders Needing Reconciliation: %d\n", stats.UnsettledOrders)

	fmt.Println("\n3. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n4. Busiest Orders:")
	printTop(stats.OrderActivity, 5, "log lines")

	fmt.Println("\n5. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for k, n := range counts {
		entries = append(entries, entry{k, n})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].key < entries[j].key
		}
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
