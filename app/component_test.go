package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/lithammer/shortuuid/v3"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"backstage/app"
	"backstage/db"
	"backstage/entity"
	"backstage/gateway"
	"backstage/pubsub"
	"backstage/pubsub/event"
)

const (
	httpAddress       = "localhost:18080"
	baseURL           = "http://" + httpAddress
	collaboratorToken = "component-test-token"
)

var httpClient = &http.Client{
	Transport: &http.Transport{DisableKeepAlives: true},
	Timeout:   5 * time.Second,
}

func TestComponent(t *testing.T) {
	if testing.Short() {
		t.Skip("component test needs postgres and redis")
	}

	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.Open(postgresURL)
	require.NoError(t, err)
	defer dbConn.Close()

	redisClient := pubsub.NewRedisClient(redisAddr)
	defer redisClient.Close()

	spreadsheetsClient := &gateway.SpreadsheetsMock{}
	receiptsClient := &gateway.ReceiptsMock{}
	filesClient := &gateway.FilesMock{}

	catalog, err := entity.NewPricingCatalog("EUR", map[entity.TicketType]decimal.Decimal{
		entity.TicketTypeStandard:  decimal.RequireFromString("89.50"),
		entity.TicketTypeVIP:       decimal.RequireFromString("150.00"),
		entity.TicketTypeBackstage: decimal.RequireFromString("299.00"),
	})
	require.NoError(t, err)

	application, err := app.New(
		app.Options{
			HTTPAddr:          httpAddress,
			CollaboratorToken: collaboratorToken,
			Catalog:           catalog,
			SeedDemoData:      true,
		},
		dbConn,
		redisClient,
		spreadsheetsClient,
		receiptsClient,
		filesClient,
		nil,
	)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		assert.NoError(t, application.Run(ctx))
	}()
	defer func() {
		cancel()
		<-finished
	}()

	waitForHttpServer(t)

	fanID := "fan-" + shortuuid.New()
	putUser(t, fanID, "FAN")

	ticket := purchaseTicket(t, fanID, "demo-club-night", "BACKSTAGE")

	assertReceiptIssued(t, receiptsClient, ticket.TicketID)
	assertTicketArtifactStored(t, filesClient, fanID, ticket)

	cancelTicket(t, fanID, ticket.TicketID)
	assertRowToSheetAdded(t, spreadsheetsClient, ticket.TicketID, event.CancelledTicketsSheet)

	assertStoredInDataLake(t, db.NewDataLake(dbConn), "TicketIssued_v1", "TicketCancelled_v1", "PaymentSettled_v1")
}

type purchasedTicket struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber string `json:"ticket_number"`
	ArtifactRef  string `json:"artifact_ref"`
}

func doRequest(t *testing.T, method, path, userID string, body any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, baseURL+path, &payload)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Correlation-ID", shortuuid.New())
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	} else {
		req.Header.Set("Authorization", "Bearer "+collaboratorToken)
	}

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	return resp
}

func putUser(t *testing.T, userID, role string) {
	t.Helper()

	resp := doRequest(t, http.MethodPut, "/users/"+userID, "", map[string]string{
		"email": userID + "@example.com",
		"role":  role,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func purchaseTicket(t *testing.T, userID, eventID, ticketType string) purchasedTicket {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/tickets", userID, map[string]any{
		"event_id":    eventID,
		"ticket_type": ticketType,
		"quantity":    1,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Tickets []purchasedTicket `json:"tickets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Tickets, 1)

	return body.Tickets[0]
}

func cancelTicket(t *testing.T, userID, ticketID string) {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/tickets/"+ticketID+"/cancel", userID, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func assertReceiptIssued(t *testing.T, receiptsService *gateway.ReceiptsMock, ticketID string) {
	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			_, ok := lo.Find(receiptsService.Issued(), func(r entity.IssueReceiptRequest) bool {
				return r.TicketID == ticketID
			})
			assert.True(t, ok, "receipt for ticket %s not found", ticketID)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertTicketArtifactStored(t *testing.T, filesAPI *gateway.FilesMock, userID string, ticket purchasedTicket) {
	fileID := ticket.TicketNumber + "-ticket.html"

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			content, err := filesAPI.DownloadFile(context.Background(), fileID)
			if !assert.NoError(t, err) {
				return
			}
			assert.Contains(t, content, ticket.TicketNumber)
		},
		10*time.Second,
		100*time.Millisecond,
	)

	assert.EventuallyWithT(
		t,
		func(collectT *assert.CollectT) {
			resp := doRequest(t, http.MethodGet, "/me/tickets", userID, nil)
			defer resp.Body.Close()

			var tickets []purchasedTicket
			if !assert.NoError(collectT, json.NewDecoder(resp.Body).Decode(&tickets)) {
				return
			}

			stored, ok := lo.Find(tickets, func(p purchasedTicket) bool { return p.TicketID == ticket.TicketID })
			if assert.True(collectT, ok) {
				assert.Equal(collectT, fileID, stored.ArtifactRef)
			}
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertRowToSheetAdded(t *testing.T, spreadsheetsService *gateway.SpreadsheetsMock, ticketID string, sheetName string) bool {
	return assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			rows := spreadsheetsService.RowsOf(sheetName)
			if !assert.NotEmpty(t, rows, "sheet %s is empty", sheetName) {
				return
			}

			assert.Contains(t, lo.Flatten(rows), ticketID, "ticket id not found in sheet %s", sheetName)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertStoredInDataLake(t *testing.T, dataLake db.DataLake, eventNames ...string) {
	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			events, err := dataLake.GetEvents(context.Background())
			if !assert.NoError(t, err) {
				return
			}

			stored := lo.Map(events, func(e entity.DataLakeEvent, _ int) string { return e.Name })
			for _, name := range eventNames {
				assert.Contains(t, stored, name)
			}
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := httpClient.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}
