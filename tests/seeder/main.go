package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
)

const baseURL = "http://localhost:8080/api/v1"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func randomString(n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func post(path, token string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%s: %s", path, env.Message)
	}
	return env.Data, nil
}

func main() {
	username := "seeder_" + randomString(6)
	password := "seeder-pass-" + randomString(8)

	_, err := post("/users", "", map[string]string{
		"username":        username,
		"password":        password,
		"confirmPassword": password,
		"name":            "Seed",
		"lastName":        "User",
		"email":           username + "@example.com",
	})
	if err != nil {
		log.Fatal("failed to register user: ", err)
	}
	log.Println("user registered", username)

	data, err := post("/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		log.Fatal("failed to login: ", err)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &login); err != nil {
		log.Fatal("failed to decode token: ", err)
	}

	productIDs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		data, err := post("/products", login.Token, map[string]any{
			"name":        fmt.Sprintf("Product %s-%d", randomString(4), i),
			"description": "seeded product",
			"price":       fmt.Sprintf("%d.%02d", rand.Intn(900)+100, rand.Intn(100)),
			"quantity":    rand.Intn(50) + 50,
		})
		if err != nil {
			log.Fatal("failed to create product: ", err)
		}
		var product struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &product); err != nil {
			log.Fatal("failed to decode product: ", err)
		}
		productIDs = append(productIDs, product.ID)
	}
	log.Println("products created", len(productIDs))

	for i := 0; i < 20; i++ {
		lines := make([]map[string]any, 0, 3)
		for _, id := range pick(productIDs, rand.Intn(3)+1) {
			lines = append(lines, map[string]any{
				"productId": id,
				"quantity":  rand.Intn(3) + 1,
			})
		}

		data, err := post("/orders", login.Token, map[string]any{"lines": lines})
		if err != nil {
			log.Println("failed to create order: ", err)
			continue
		}
		var order struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &order); err != nil {
			log.Fatal("failed to decode order: ", err)
		}
		log.Println("order created", order.ID)
	}
}

func pick(ids []string, n int) []string {
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
