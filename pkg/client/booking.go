package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"staybook/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// WithBearer sets the Authorization header sent on every subsequent request.
func (c *BookingClient) WithBearer(token string) *BookingClient {
	c.httpClient.Headers["Authorization"] = "Bearer " + token
	return c
}

func (c *BookingClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}

func (c *BookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/bookings", body)
}

func (c *BookingClient) CreateWithIdempotencyKey(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/bookings", body, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/bookings", rawBody)
}

func (c *BookingClient) List(propertyID, roomID, status string) (*Response, error) {
	q := url.Values{}
	if propertyID != "" {
		q.Set("propertyId", propertyID)
	}
	if roomID != "" {
		q.Set("roomId", roomID)
	}
	if status != "" {
		q.Set("status", status)
	}

	path := "/api/bookings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.httpClient.GET(path)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/bookings/" + url.PathEscape(id))
}

func (c *BookingClient) UpdateStatus(id string, status string) (*Response, error) {
	body := model.UpdateBookingStatusRequest{BookingStatus: status}
	return c.httpClient.PATCH("/api/bookings/"+url.PathEscape(id), body)
}

func (c *BookingClient) RoomAvailability(roomID string, year, month int) (*Response, error) {
	q := url.Values{}
	q.Set("roomId", roomID)
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	return c.httpClient.GET("/api/room-availability?" + q.Encode())
}

func (c *BookingClient) UploadPayment(bookingID, fileName, contentType string, file []byte) (*Response, error) {
	fields := map[string]string{"bookingId": bookingID}
	return c.httpClient.POSTMultipart("/api/upload-payment", fields, "screenshot", fileName, contentType, file)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Booking json.RawMessage `json:"booking"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Booking, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json:\n%s\n%s", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *BookingClient) DecodeView(resp *Response) (*model.BookingView, error) {
	var view model.BookingView
	if err := json.Unmarshal(resp.Body, &view); err != nil {
		return nil, fmt.Errorf("could not decode booking view:\n%s\n%s", resp.ToString(), err)
	}
	return &view, nil
}

func (c *BookingClient) DecodeViews(resp *Response) ([]*model.BookingView, error) {
	var views []*model.BookingView
	if err := json.Unmarshal(resp.Body, &views); err != nil {
		return nil, fmt.Errorf("could not decode booking list:\n%s\n%s", resp.ToString(), err)
	}
	return views, nil
}

func (c *BookingClient) DecodeAvailability(resp *Response) (*model.RoomAvailability, error) {
	var availability model.RoomAvailability
	if err := json.Unmarshal(resp.Body, &availability); err != nil {
		return nil, fmt.Errorf("could not decode availability:\n%s\n%s", resp.ToString(), err)
	}
	return &availability, nil
}
