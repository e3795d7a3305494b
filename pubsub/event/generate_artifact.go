package event

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"backstage/entity"
)

var ticketTemplate = template.Must(template.New("ticket").Parse(`<html>
	<head>
		<title>Ticket {{.TicketNumber}}</title>
	</head>
	<body>
		<h1>Ticket {{.TicketNumber}}</h1>
		<p>Event: {{.EventID}}</p>
		<p>Type: {{.TicketType}}</p>
		<p>Holder: {{.OwnerEmail}}</p>
		<p>Price: {{.Price}}</p>
		<p>Access: {{.Access.Describe}}</p>
		<p data-qr="{{.TicketID}}">{{.TicketID}}</p>
	</body>
</html>
`))

func (h Handler) GenerateArtifactHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"GenerateArtifactHandler",
		func(ctx context.Context, event *entity.TicketIssued_v1) error {
			log.FromContext(ctx).WithField("ticket_id", event.TicketID).Info("Generating ticket artifact")

			var body bytes.Buffer
			err := ticketTemplate.Execute(&body, entity.TicketArtifact{
				TicketID:     event.TicketID,
				TicketNumber: event.TicketNumber,
				EventID:      event.EventID,
				OwnerEmail:   event.OwnerEmail,
				TicketType:   event.TicketType,
				Price:        event.Price,
				Access:       event.Access,
			})
			if err != nil {
				return fmt.Errorf("could not render ticket %s: %w", event.TicketID, err)
			}

			fileID := fmt.Sprintf("%s-ticket.html", event.TicketNumber)
			if err := h.filesService.UploadFile(ctx, fileID, body.String()); err != nil {
				return fmt.Errorf("could not upload ticket %s: %w", event.TicketID, err)
			}

			return h.artifacts.AttachArtifact(ctx, event.TicketID, fileID)
		},
	)
}
