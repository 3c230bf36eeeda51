package cloudbeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"desayuno/utils"
)

// Reservacion is the slice of a Cloudbeds stay record this service cares
// about.
type Reservacion struct {
	RoomNumber     string `json:"roomNumber"`
	GuestFirstName string `json:"guestFirstName"`
	GuestLastName  string `json:"guestLastName"`
	Status         string `json:"status"`
	CheckIn        string `json:"checkIn"`  // "2006-01-02"
	CheckOut       string `json:"checkOut"` // "2006-01-02"
}

type listaReservaciones struct {
	Reservations []Reservacion `json:"reservations"`
}

// Client talks to the Cloudbeds property-management API.
type Client struct {
	baseURL    string
	apiKey     string
	propertyID string
	httpClient *http.Client
}

func New(baseURL, apiKey, propertyID string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		propertyID: propertyID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FromEnv builds a client from CLOUDBEDS_* environment variables.
func FromEnv() *Client {
	return New(
		os.Getenv("CLOUDBEDS_API_BASE_URL"),
		os.Getenv("CLOUDBEDS_API_KEY"),
		os.Getenv("CLOUDBEDS_PROPERTY_ID"),
	)
}

// Reservaciones lists the property's stay records overlapping the given
// date range.
func (c *Client) Reservaciones(ctx context.Context, startDate, endDate string) ([]Reservacion, error) {
	endpoint := fmt.Sprintf("%s/properties/%s/reservations", c.baseURL, c.propertyID)

	params := url.Values{}
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("X-PROPERTY-ID", c.propertyID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudbeds responded %d", resp.StatusCode)
	}

	var lista listaReservaciones
	if err := json.NewDecoder(resp.Body).Decode(&lista); err != nil {
		return nil, err
	}
	return lista.Reservations, nil
}

// Statuses under which a guest counts as occupying the room.
var estadosValidos = map[string]bool{
	"confirmed":  true,
	"checked_in": true,
	"pending":    true,
}

// Validar reports whether the named guest occupies the room on fecha
// according to Cloudbeds. Any lookup or parse failure means "not found":
// validation fails closed and is never retried.
func (c *Client) Validar(ctx context.Context, habitacion int, nombre, apellido, fecha string) bool {
	dia, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return false
	}

	reservaciones, err := c.Reservaciones(ctx, fecha, fecha)
	if err != nil {
		log.Printf("cloudbeds lookup failed: %v", err)
		return false
	}

	habitacionStr := strconv.Itoa(habitacion)
	nombreBuscado := utils.Sanitizar(nombre)
	apellidoBuscado := utils.Sanitizar(apellido)

	for _, rsv := range reservaciones {
		if !estadosValidos[utils.Sanitizar(rsv.Status)] {
			continue
		}
		if rsv.RoomNumber != habitacionStr {
			continue
		}
		if utils.Sanitizar(rsv.GuestFirstName) != nombreBuscado ||
			utils.Sanitizar(rsv.GuestLastName) != apellidoBuscado {
			continue
		}

		checkIn, err1 := time.Parse("2006-01-02", rsv.CheckIn)
		checkOut, err2 := time.Parse("2006-01-02", rsv.CheckOut)
		if err1 != nil || err2 != nil {
			continue
		}
		// in the stay window: after check-in, up to and including check-out
		if checkIn.Before(dia) && !dia.After(checkOut) {
			return true
		}
	}
	return false
}
