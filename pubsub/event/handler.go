package event

import (
	"context"

	"backstage/entity"
)

type Handler struct {
	spreadsheetsService SpreadsheetsAPI
	receiptsService     ReceiptsService
	filesService        FilesAPI
	artifacts           ArtifactRecorder
}

func NewHandler(
	spreadsheetsService SpreadsheetsAPI,
	receiptsService ReceiptsService,
	filesService FilesAPI,
	artifacts ArtifactRecorder,
) Handler {
	if spreadsheetsService == nil {
		panic("missing spreadsheetsService")
	}
	if receiptsService == nil {
		panic("missing receiptsService")
	}
	if filesService == nil {
		panic("missing filesService")
	}
	if artifacts == nil {
		panic("missing artifacts")
	}

	return Handler{
		spreadsheetsService: spreadsheetsService,
		receiptsService:     receiptsService,
		filesService:        filesService,
		artifacts:           artifacts,
	}
}

type SpreadsheetsAPI interface {
	AppendRow(ctx context.Context, sheetName string, row []string) error
}

type ReceiptsService interface {
	IssueReceipt(ctx context.Context, request entity.IssueReceiptRequest) (entity.IssueReceiptResponse, error)
}

type FilesAPI interface {
	UploadFile(ctx context.Context, fileID string, fileContent string) error
}

// ArtifactRecorder stores the reference of a generated ticket document on the ticket.
type ArtifactRecorder interface {
	AttachArtifact(ctx context.Context, ticketID, ref string) error
}
