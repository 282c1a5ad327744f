// Command mockservice runs an in-memory stand-in for the scooter rental
// service, implementing the five endpoints scooterload drives. It lets you
// exercise the harness without the real service and its database
// dependencies.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	pricePerMinute = 500
	priceUnlock    = 5000
	deposit        = 10000

	// Rides shorter than this are free, mirroring the rental service's
	// incomplete-ride rule.
	incompleteRideThreshold = 5 * time.Second
)

type offer struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ScooterID      string    `json:"scooter_id"`
	PricePerMinute int       `json:"price_per_minute"`
	PriceUnlock    int       `json:"price_unlock"`
	Deposit        int       `json:"deposit"`
	ExpiresAt      time.Time `json:"expires_at"`

	used bool
}

type order struct {
	ID              string     `json:"id"`
	OfferID         string     `json:"offer_id"`
	UserID          string     `json:"user_id"`
	ScooterID       string     `json:"scooter_id"`
	Status          string     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	FinishTime      *time.Time `json:"finish_time,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	PricePerMinute  int        `json:"price_per_minute"`
	PriceUnlock     int        `json:"price_unlock"`
	Deposit         int        `json:"deposit"`
	CurrentAmount   int        `json:"current_amount"`
}

type rentalService struct {
	mu       sync.Mutex
	offerSeq int
	offers   map[string]*offer
	orders   map[string]*order
	offerTTL time.Duration
	latency  time.Duration
}

func main() {
	port := flag.Int("port", 8080, "Listening port")
	latency := flag.Duration("latency", 0, "Artificial delay added to every response")
	offerTTL := flag.Duration("offer-ttl", 5*time.Minute, "How long an offer stays usable")
	flag.Parse()

	svc := &rentalService{
		offers:   map[string]*offer{},
		orders:   map[string]*order{},
		offerTTL: *offerTTL,
		latency:  *latency,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", svc.handleHealth)
	mux.HandleFunc("/offers", svc.handleOffers)
	mux.HandleFunc("/orders", svc.handleOrders)
	mux.HandleFunc("/orders/", svc.handleOrderByID)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock rental service listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (s *rentalService) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func (s *rentalService) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *rentalService) handleOffers(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID    string `json:"user_id"`
		ScooterID string `json:"scooter_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.ScooterID == "" {
		http.Error(w, "scooter_id is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.offerSeq++
	o := &offer{
		ID:             fmt.Sprintf("offer-%d", s.offerSeq),
		UserID:         req.UserID,
		ScooterID:      req.ScooterID,
		PricePerMinute: pricePerMinute,
		PriceUnlock:    priceUnlock,
		Deposit:        deposit,
		ExpiresAt:      time.Now().Add(s.offerTTL),
	}
	s.offers[o.ID] = o

	respondJSON(w, http.StatusCreated, o)
}

func (s *rentalService) handleOrders(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OrderID string `json:"order_id"`
		OfferID string `json:"offer_id"`
		UserID  string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OfferID == "" {
		http.Error(w, "offer_id is required", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		req.OrderID = fmt.Sprintf("order-%d", time.Now().UnixNano())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Repeating an order id returns the existing order unchanged.
	if existing, ok := s.orders[req.OrderID]; ok {
		respondJSON(w, http.StatusCreated, existing)
		return
	}

	off, ok := s.offers[req.OfferID]
	if !ok {
		http.Error(w, "Offer not found", http.StatusBadRequest)
		return
	}
	if time.Now().After(off.ExpiresAt) {
		http.Error(w, "Offer expired", http.StatusBadRequest)
		return
	}
	if off.UserID != req.UserID {
		http.Error(w, "Invalid user: user_id does not match the offer", http.StatusBadRequest)
		return
	}
	if off.used {
		http.Error(w, "Offer already used", http.StatusBadRequest)
		return
	}
	off.used = true

	ord := &order{
		ID:             req.OrderID,
		OfferID:        off.ID,
		UserID:         req.UserID,
		ScooterID:      off.ScooterID,
		Status:         "ACTIVE",
		StartTime:      time.Now(),
		PricePerMinute: off.PricePerMinute,
		PriceUnlock:    off.PriceUnlock,
		Deposit:        off.Deposit,
		CurrentAmount:  off.PriceUnlock,
	}
	s.orders[ord.ID] = ord

	respondJSON(w, http.StatusCreated, ord)
}

func (s *rentalService) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	s.delay()
	rest := strings.TrimPrefix(r.URL.Path, "/orders/")

	if strings.HasSuffix(rest, "/finish") {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.finishOrder(w, strings.TrimSuffix(rest, "/finish"))
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	ord, ok := s.orders[rest]
	var snapshot order
	if ok {
		snapshot = *ord
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (s *rentalService) finishOrder(w http.ResponseWriter, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[orderID]
	if !ok {
		http.Error(w, "No such order", http.StatusBadRequest)
		return
	}
	if ord.Status != "ACTIVE" {
		http.Error(w, "Order already finished", http.StatusConflict)
		return
	}

	now := time.Now()
	seconds := int(now.Sub(ord.StartTime).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	total := 0
	if now.Sub(ord.StartTime) >= incompleteRideThreshold {
		minutes := int(math.Ceil(float64(seconds) / 60.0))
		total = ord.PriceUnlock + minutes*ord.PricePerMinute
	}

	ord.Status = "FINISHED"
	ord.FinishTime = &now
	ord.DurationSeconds = &seconds
	ord.CurrentAmount = total

	respondJSON(w, http.StatusOK, ord)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
