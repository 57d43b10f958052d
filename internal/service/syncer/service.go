package syncer

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/pkg/metrics"
)

// Service периодически сбрасывает снапшот in-memory хранилища в персистентное
// и восстанавливает состояние при старте сервиса.
//
// Сбой синхронизации не влияет на обработку запросов: ошибка логируется,
// полный снапшот уйдёт в следующем цикле.
type Service struct {
	source  SnapshotSource
	gateway PersistenceGateway
	metrics *metrics.Metrics
	logger  Logger
}

func NewService(source SnapshotSource, gateway PersistenceGateway, m *metrics.Metrics, logger Logger) *Service {
	return &Service{
		source:  source,
		gateway: gateway,
		metrics: m,
		logger:  logger,
	}
}

// Sync записывает текущий снапшот хранилища через шлюз персистентности
func (s *Service) Sync(ctx context.Context) error {
	slots, bookings := s.source.Snapshot()

	if s.metrics != nil {
		s.metrics.SyncRunsTotal.Inc()
	}

	if err := s.gateway.ReplaceAll(ctx, slots, bookings); err != nil {
		if s.metrics != nil {
			s.metrics.SyncFailuresTotal.Inc()
		}
		s.logger.Error("[Syncer.Sync] Ошибка записи снапшота: slots=%d, bookings=%d: %v", len(slots), len(bookings), err)
		return fmt.Errorf("Sync - failed to persist snapshot: %w", err)
	}

	s.logger.Info("[Syncer.Sync] Снапшот записан: slots=%d, bookings=%d", len(slots), len(bookings))
	return nil
}

// Restore загружает последний снапшот из персистентного хранилища.
// Вызывается один раз при старте до приёма запросов.
func (s *Service) Restore(ctx context.Context) error {
	slots, bookings, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("Restore - failed to load snapshot: %w", err)
	}

	s.source.Load(slots, bookings)
	s.logger.Info("[Syncer.Restore] Состояние восстановлено: slots=%d, bookings=%d", len(slots), len(bookings))
	return nil
}
