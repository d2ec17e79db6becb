package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

const baseURL = "http://localhost:8080/api/v1/orders/"

func main() {
	token := os.Getenv("TOKEN")
	if token == "" {
		fmt.Println("TOKEN не задан, запросы пойдут без авторизации")
	}
	orderID := os.Getenv("ORDER_ID")

	for {
		var wg sync.WaitGroup
		for i, n := 0, rand.Intn(10); i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				doRequest(token, orderID)
			}()
		}
		wg.Wait()
		time.Sleep(20 * time.Millisecond)
	}
}

func randomID(length int) string {
	chars := []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	id := make([]rune, length)
	for i := range id {
		id[i] = chars[rand.Intn(len(chars))]
	}
	return string(id)
}

func doRequest(token, orderID string) {
	id := orderID
	if id == "" || rand.Intn(5) == 0 {
		id = randomID(36)
	}

	req, err := http.NewRequest(http.MethodGet, baseURL+id, nil)
	if err != nil {
		fmt.Println("Ошибка запроса:", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Ошибка запроса:", err)
	} else {
		fmt.Println("GET", baseURL+id, "->", resp.Status)
		resp.Body.Close()
	}
}
