package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"eval-assistant-be/pkg/ai/stream"

	"github.com/fatih/color"
)

const defaultBaseURL = "http://localhost:3000/api"

// One probe per branch of the router.
var defaultProbes = []string{
	"hi",
	"what is 2+2",
	"list my last five evaluation runs",
	"how is the faithfulness metric computed?",
	"write a haiku about latency",
}

func baseURL() string {
	if v := os.Getenv("CHATPROBE_BASE_URL"); v != "" {
		return v
	}
	return defaultBaseURL
}

func probe(client *http.Client, message string) error {
	body, _ := json.Marshal(map[string]interface{}{"message": message})
	req, err := http.NewRequest(http.MethodPost, baseURL()+"/chat/v1/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	color.Green("Status: %s", resp.Status)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev stream.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			color.Red("  bad line: %s", scanner.Text())
			continue
		}
		switch ev.Type {
		case stream.EventStatus:
			color.Cyan("  [status] %s", ev.Message)
		case stream.EventDelta:
			fmt.Print(ev.Content)
		case stream.EventFinal:
			fmt.Println()
			color.Green("  [final] %s", ev.Content)
		case stream.EventError:
			color.Red("  [error] %s", ev.Message)
		}
	}
	color.White("  (%s)", time.Since(start).Round(time.Millisecond))
	return scanner.Err()
}

func main() {
	probes := defaultProbes
	if len(os.Args) > 1 {
		probes = os.Args[1:]
	}

	color.Cyan("🚀 Probing %s\n", baseURL())

	resp, err := http.Get(baseURL() + "/health")
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	resp.Body.Close()
	color.Green("Health: %s", resp.Status)

	client := &http.Client{} // No timeout; the server bounds every stage
	for i, msg := range probes {
		color.Yellow("\n%d. %q", i+1, msg)
		if err := probe(client, msg); err != nil {
			color.Red("Failed: %v", err)
		}
	}
}
