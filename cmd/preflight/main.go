// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	addr := strings.TrimSpace(os.Getenv("CLASHTEST_ADDR"))
	target := strings.TrimSpace(os.Getenv("CLASHTEST_TARGET_URL"))
	interval := strings.TrimSpace(os.Getenv("CLASHTEST_DEFAULT_INTERVAL_SECONDS"))
	logFile := strings.TrimSpace(os.Getenv("CLASHTEST_LOG_FILE"))
	db := strings.TrimSpace(os.Getenv("CLASHTEST_DATABASE_URL"))
	slack := strings.TrimSpace(os.Getenv("CLASHTEST_SLACK_WEBHOOK_URL"))
	readOnly := strings.TrimSpace(os.Getenv("CLASHTEST_READ_ONLY"))

	// A bad target URL stops the API at boot; everything else has a default.
	if target != "" {
		u, err := url.Parse(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fail("CLASHTEST_TARGET_URL is not a usable http(s) URL: " + target)
		}
		ok("CLASHTEST_TARGET_URL=" + target)
	} else {
		ok("CLASHTEST_TARGET_URL empty — default generate_204 endpoint will be probed.")
	}

	if addr == "" {
		warn("CLASHTEST_ADDR empty — API will listen on 127.0.0.1:8080.")
	} else {
		ok("CLASHTEST_ADDR=" + addr)
	}

	if interval != "" {
		if n, err := strconv.Atoi(interval); err != nil || n < 1 {
			warn("CLASHTEST_DEFAULT_INTERVAL_SECONDS=" + interval + " is not a positive integer; the default of 30 will be used.")
		} else {
			ok("CLASHTEST_DEFAULT_INTERVAL_SECONDS=" + interval)
		}
	}

	if db != "" {
		ok("CLASHTEST_DATABASE_URL present — probe log goes to postgres.")
	} else if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				warn("CLASHTEST_LOG_FILE directory " + dir + " does not exist yet; it will be created on first write.")
			}
		}
		ok("CLASHTEST_LOG_FILE=" + logFile)
	} else {
		ok("No store configured — probe log goes to connectivity_log.txt in the working directory.")
	}

	if slack != "" && !strings.HasPrefix(slack, "https://") {
		warn("CLASHTEST_SLACK_WEBHOOK_URL does not start with https:// — Slack will reject it.")
	}

	if strings.EqualFold(readOnly, "true") {
		warn("CLASHTEST_READ_ONLY=true — probe and auto-loop routes will answer 403.")
	}

	ok("preflight passed")
}
