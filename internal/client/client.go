// Package client is the Go SDK for the ResidentBook API. Client issues the
// HTTP calls; Store mirrors the remote data in a single reducer-driven State;
// App ties the two together the way a front end would.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
			parts = append(parts, field+" "+e.Fields[field])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type errorBody struct {
	Error   string            `json:"error"`
	Details string            `json:"details"`
	Fields  map[string]string `json:"fields"`
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for baseURL (e.g. "http://localhost:8080"). A nil
// httpClient gets a default one with a request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer ID token sent with every request. Empty clears it.
func (c *Client) SetToken(idToken string) {
	c.mu.Lock()
	c.token = idToken
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil {
			apiErr.Message, apiErr.Details, apiErr.Fields = eb.Error, eb.Details, eb.Fields
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func viewQuery(v listview.View) url.Values {
	q := url.Values{}
	if v.Search != "" {
		q.Set("search", v.Search)
	}
	if v.Sort != "" {
		q.Set("sort", v.Sort)
	}
	if v.Order != "" {
		q.Set("order", string(v.Order))
	}
	if v.Page > 0 {
		q.Set("page", strconv.Itoa(v.Page))
	}
	return q
}

func dayQuery(q models.AvailabilityQuery) url.Values {
	return url.Values{"serviceId": {q.ServiceID}, "date": {q.Date}}
}

// --- Auth ---

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	var session models.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Services ---

func (c *Client) ListServices(ctx context.Context) ([]*models.Service, error) {
	var resp struct {
		Services []*models.Service `json:"services"`
	}
	if err := c.do(ctx, http.MethodGet, "/services", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

func (c *Client) CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error) {
	var svc models.Service
	if err := c.do(ctx, http.MethodPost, "/admin/services", nil, req, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) DeleteService(ctx context.Context, serviceID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/services/"+url.PathEscape(serviceID), nil, nil, nil)
}

// --- Slots ---

// Candidates returns the default slot labels of a day.
func (c *Client) Candidates(ctx context.Context) ([]string, error) {
	var resp struct {
		Slots []string `json:"slots"`
	}
	if err := c.do(ctx, http.MethodGet, "/slots/candidates", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

// AvailableSlots returns the unbooked slots of one service day.
func (c *Client) AvailableSlots(ctx context.Context, q models.AvailabilityQuery) ([]*models.Slot, error) {
	var resp struct {
		Slots []*models.Slot `json:"slots"`
	}
	if err := c.do(ctx, http.MethodGet, "/slots/available", dayQuery(q), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

// ListSlots returns every slot of a service day, booked or not. Admin only.
func (c *Client) ListSlots(ctx context.Context, q models.AvailabilityQuery, view listview.View) (listview.Result[*models.Slot], error) {
	query := viewQuery(view)
	for k, v := range dayQuery(q) {
		query[k] = v
	}
	var res listview.Result[*models.Slot]
	err := c.do(ctx, http.MethodGet, "/admin/slots", query, nil, &res)
	return res, err
}

func (c *Client) CreateSlot(ctx context.Context, req models.CreateSlotRequest) (*models.Slot, error) {
	var slot models.Slot
	if err := c.do(ctx, http.MethodPost, "/admin/slots", nil, req, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (c *Client) GenerateSlots(ctx context.Context, req models.GenerateSlotsRequest) (*models.GenerateSlotsResult, error) {
	var res models.GenerateSlotsResult
	if err := c.do(ctx, http.MethodPost, "/admin/slots/generate", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteSlot(ctx context.Context, slotID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/slots/"+url.PathEscape(slotID), nil, nil, nil)
}

// --- Bookings ---

func (c *Client) Book(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) MyBookings(ctx context.Context, view listview.View) (listview.Result[*models.Booking], error) {
	var res listview.Result[*models.Booking]
	err := c.do(ctx, http.MethodGet, "/bookings", viewQuery(view), nil, &res)
	return res, err
}

func (c *Client) AllBookings(ctx context.Context, view listview.View) (listview.Result[*models.Booking], error) {
	var res listview.Result[*models.Booking]
	err := c.do(ctx, http.MethodGet, "/admin/bookings", viewQuery(view), nil, &res)
	return res, err
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(bookingID), nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking deletes a booking. Residents may cancel their own, admins any.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	return c.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(bookingID), nil, nil, nil)
}
