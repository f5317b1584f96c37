// Pinger keeps the liveness endpoint warm. Free hosting suspends the bots
// after ~15 minutes without traffic; run this from any always-on machine.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	interval := flag.Duration("interval", 10*time.Minute, "time between pings")
	count := flag.Int("count", 0, "number of pings, 0 = forever")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	for i := 0; *count == 0 || i < *count; i++ {
		if i > 0 {
			time.Sleep(*interval)
		}
		pingOnce(client, *baseURL)
	}
}

func pingOnce(client *http.Client, baseURL string) {
	body, err := get(client, baseURL+"/")
	if err != nil {
		fmt.Println("ping /:", err)
	} else {
		fmt.Println("ping /:", body)
	}

	body, err = get(client, baseURL+"/health")
	if err != nil {
		fmt.Println("ping /health:", err)
		return
	}
	var health struct {
		Status string `json:"status"`
		Bots   string `json:"bots"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		fmt.Println("ping /health: bad response:", body)
		return
	}
	fmt.Printf("ping /health: status=%s bots=%s\n", health.Status, health.Bots)
}

func get(client *http.Client, url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return string(b), nil
}
