package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Usage example on the command line:
// > go run main.go -url http://localhost:8080/health -timeout 2m
func main() {
	url := flag.String("url", "http://localhost:8080/health", "health endpoint of the contacts service")
	interval := flag.Duration("interval", 5*time.Second, "time between two attempts")
	timeout := flag.Duration("timeout", 0, "give up after this long, 0 waits forever")
	flag.Parse()

	client := &http.Client{Timeout: *interval}
	var totalWaitTime time.Duration
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		if *timeout > 0 && totalWaitTime >= *timeout {
			fmt.Printf("Service not available after %s\n", totalWaitTime)
			os.Exit(1)
		}
		totalWaitTime += *interval
		fmt.Printf("Waiting %s\n", totalWaitTime)
		time.Sleep(*interval)
	}
}
