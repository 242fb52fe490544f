package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println()
		fmt.Println("1) run a test now")
		fmt.Println("2) start auto testing")
		fmt.Println("3) stop auto testing")
		fmt.Println("4) auto status")
		fmt.Println("5) stats")
		fmt.Println("q) quit")
		fmt.Print("> ")

		choice, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			post(api+"/api/test", nil)
		case "2":
			fmt.Print("Interval in seconds (blank for server default): ")
			raw, _ := reader.ReadString('\n')
			raw = strings.TrimSpace(raw)
			var body []byte
			if raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					fmt.Println("Not a number.")
					continue
				}
				body, _ = json.Marshal(map[string]int{"interval_seconds": n})
			}
			post(api+"/api/auto/start", body)
		case "3":
			post(api+"/api/auto/stop", nil)
		case "4":
			get(api + "/api/auto/status")
		case "5":
			get(api + "/api/stats")
		case "q", "quit", "exit":
			return
		default:
			fmt.Println("Unknown choice.")
		}
	}
}

func post(url string, body []byte) {
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	printResponse(resp)
}

func get(url string) {
	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Println("Error reading response:", err)
		return
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, b, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(strings.TrimSpace(string(b)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Println("API returned status:", resp.Status)
	}
}
