package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Body   string
	Err    error
}

type client struct {
	http    *http.Client
	baseURL string
	token   string
	actor   string
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	adminToken := flag.String("admin-token", "dev-admin-token", "X-Admin-Token")
	actor := flag.String("admin", "loadtest", "X-Admin-Id")
	sequence := flag.String("sequence", "loadtestCounter", "sequence name for the allocation test")

	nAlloc := flag.Int("n", 500, "allocation requests")
	nPromote := flag.Int("promoters", 20, "concurrent promotions of the same pending order")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	cl := &client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: *baseURL,
		token:   *adminToken,
		actor:   *actor,
	}

	// 1) 编号唯一性：并发取号，不允许重复
	fmt.Printf("start allocation test: sequence=%s n=%d concurrency=%d\n", *sequence, *nAlloc, *concurrency)
	results := runConcurrent(*nAlloc, *concurrency, func(int) Result {
		return cl.post(fmt.Sprintf("/api/sequences/%s/next", *sequence), nil, true)
	})
	printSummary("allocation", results)
	checkDistinct(results)

	// 2) 同一 pending 并发转正：只能成功一次
	pendingID, err := cl.submitPending()
	if err != nil {
		panic(fmt.Sprintf("submit pending failed: %v", err))
	}
	fmt.Printf("\nstart promotion race: pending=%s promoters=%d\n", pendingID, *nPromote)
	results = runConcurrent(*nPromote, *nPromote, func(int) Result {
		return cl.post(fmt.Sprintf("/api/pending-orders/%s/promote", pendingID), nil, true)
	})
	printSummary("promotion_race", results)
	ok := 0
	for _, r := range results {
		if r.Status == http.StatusOK {
			ok++
		}
	}
	fmt.Printf("  successful promotions: %d (want 1)\n", ok)

	// 3) 限流：同一管理员连续转正不存在的 pending，超限返回 429
	fmt.Println("\nstart rate limit test: same admin, 100 requests, concurrency 50")
	results = runConcurrent(100, 50, func(i int) Result {
		return cl.post(fmt.Sprintf("/api/pending-orders/missing-%d/promote", i), nil, true)
	})
	printSummary("rate_limit", results)
}

func runConcurrent(total, concurrency int, fn func(idx int) Result) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = fn(idx)
		}(i)
	}

	wg.Wait()
	return results
}

func (c *client) post(path string, body any, admin bool) Result {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(http.MethodPost, c.baseURL+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("X-Admin-Token", c.token)
		req.Header.Set("X-Admin-Id", c.actor)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(b)}
}

func (c *client) submitPending() (string, error) {
	res := c.post("/api/pending-orders", map[string]any{
		"customer": map[string]string{"full_name": "Load Test Customer", "whatsapp_no": "0000000000"},
		"items": []map[string]any{
			{"product_name": "Visiting Card", "quantity": 1000, "rate": "0.5", "amount": "500"},
		},
	}, false)
	if res.Err != nil {
		return "", res.Err
	}
	if res.Status != http.StatusOK {
		return "", fmt.Errorf("status=%d body=%s", res.Status, res.Body)
	}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(res.Body), &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

// checkDistinct 校验发出的编号无重复，并报告区间与空洞。
func checkDistinct(results []Result) {
	seen := map[int64]int{}
	values := make([]int64, 0, len(results))
	for _, r := range results {
		if r.Status != http.StatusOK {
			continue
		}
		var out struct {
			Data struct {
				Value int64 `json:"value"`
			} `json:"data"`
		}
		if err := json.Unmarshal([]byte(r.Body), &out); err != nil {
			continue
		}
		seen[out.Data.Value]++
		values = append(values, out.Data.Value)
	}
	if len(values) == 0 {
		fmt.Println("  no values issued")
		return
	}

	dups := 0
	for _, n := range seen {
		if n > 1 {
			dups += n - 1
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	lo, hi := values[0], values[len(values)-1]
	fmt.Printf("  issued=%d range=[%d,%d] duplicates=%d gaps=%d\n",
		len(values), lo, hi, dups, int(hi-lo+1)-len(seen))
}

// printSummary 聚合输出不同状态码分布。
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 404, 409, 429, 500, 503} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}
