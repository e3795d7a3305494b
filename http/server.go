package http

import (
	"context"
	"errors"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"backstage/entity"
)

type TicketService interface {
	PurchaseTickets(ctx context.Context, request entity.PurchaseRequest) (entity.PurchaseResult, error)
	ListUserTickets(ctx context.Context, userID string) ([]entity.TicketView, error)
	CancelTicket(ctx context.Context, ticketID, requesterID string) error
	SettlePayment(ctx context.Context, ticketID string, outcome entity.PaymentOutcome) error

	UpsertUser(ctx context.Context, userID, email string, role entity.Role) (entity.User, error)
	GetUser(ctx context.Context, userID string) (entity.User, error)
	CreateEvent(ctx context.Context, event entity.Event) error
	GetEvent(ctx context.Context, eventID string) (entity.Event, error)
}

type Server struct {
	addr             string
	e                *echo.Echo
	service          TicketService
	diagnosticErrors bool
}

func NewServer(addr string, service TicketService, collaboratorToken string, diagnosticErrors bool) *Server {
	if service == nil {
		panic("missing service")
	}
	if collaboratorToken == "" {
		panic("missing collaborator token")
	}

	e := echoHTTP.NewEcho()
	e.Use(otelecho.Middleware("backstage"))

	server := &Server{
		addr:             addr,
		e:                e,
		service:          service,
		diagnosticErrors: diagnosticErrors,
	}
	e.HTTPErrorHandler = server.handleError

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// called by the auth proxy and the payment processor
	collaboratorOnly := authenticateCollaborator(collaboratorToken)
	e.PUT("/users/:user_id", server.PutUser, collaboratorOnly)
	e.POST("/payments/settlements", server.PostPaymentSettlement, collaboratorOnly)

	authenticated := e.Group("", authenticate)
	authenticated.POST("/tickets", server.PostTickets)
	authenticated.GET("/me/tickets", server.GetMyTickets)
	authenticated.GET("/me/access", server.GetMyAccess)
	authenticated.POST("/tickets/:ticket_id/cancel", server.PostCancelTicket)
	authenticated.POST("/events", server.PostEvents)
	authenticated.GET("/events/:event_id", server.GetEvent)

	return server
}

func (s Server) Handler() http.Handler {
	return s.e
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
