package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/randomgen"
)

// Usage example on the command line:
// > go run main.go
// > go run main.go -url http://localhost:9090 -sizes 100,1000
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the contacts service")
	sizesFlag := flag.String("sizes", "1000,5000,10000,50000,100000", "comma separated numbers of contacts per round")
	flag.Parse()

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		fmt.Println("invalid sizes", err)
		panic(err)
	}
	c := client{baseURL: strings.TrimSuffix(*baseURL, "/")}

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    BIRTHD    DELETE ")
	fmt.Println("-------------------------------------------------------------")
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]int64, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := c.sendPostRequest(randomBody())
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id int64) int64 {
				return c.sendIDRequest(id, http.MethodPut, randomBody())
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id int64) int64 {
				return c.sendIDRequest(id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// upcoming birthdays, once per round
			_, d := c.sendRequest(http.MethodGet, c.baseURL+"/contacts/birthday/?days=30", nil)
			fmt.Printf("%10d", d/1000)
		}
		{
			// DELETE requests
			f := func(id int64) int64 {
				return c.sendIDRequest(id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

type client struct {
	baseURL string
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		var size int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &size); err != nil {
			return nil, err
		}
		if size < 1 {
			return nil, fmt.Errorf("size must be positive: %d", size)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

// randomBody returns a complete contact. Each body has its own email address, since the service
// rejects duplicates.
func randomBody() io.Reader {
	body, err := json.Marshal(randomgen.Contact())
	if err != nil {
		fmt.Println("could not marshal JSON", err)
		panic(err)
	}
	return bytes.NewReader(body)
}

// callInLoop calls f for every id in random order and prints the mean duration in microseconds.
func callInLoop(ids []int64, f func(id int64) int64) {
	shuffled := make([]int64, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func (c client) sendPostRequest(bodyReader io.Reader) (int64, int64) {
	resBody, duration := c.sendRequest(http.MethodPost, c.baseURL+"/contacts/", bodyReader)
	var contact model.Contact
	err := json.Unmarshal(resBody, &contact)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return contact.Id, duration
}

func (c client) sendIDRequest(id int64, method string, bodyReader io.Reader) int64 {
	requestURL := fmt.Sprintf("%s/contacts/%d", c.baseURL, id)
	_, duration := c.sendRequest(method, requestURL, bodyReader)
	return duration
}

func (c client) sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode >= http.StatusBadRequest {
		fmt.Printf("%s %s returned %d: %s\n", method, requestURL, res.StatusCode, resBody)
		panic(res.Status)
	}
	return resBody, after - before
}
