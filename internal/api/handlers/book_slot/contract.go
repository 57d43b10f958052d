package book_slot

import (
	"context"

	bookSlotUC "github.com/m04kA/SMC-TrainingService/internal/usecase/book_slot"
)

type BookSlotUseCase interface {
	Execute(ctx context.Context, req *bookSlotUC.Request) (*bookSlotUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
