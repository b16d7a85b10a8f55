package schedule_board_service

import (
	"context"

	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

type pushOp struct {
	event string
	fn    func(ctx context.Context) error
}

// enqueuePush ставит запись в удаленный стор в очередь, не блокируя мутацию.
// Один воркер разбирает очередь, поэтому записи уходят в порядке выдачи.
// Переполненная очередь теряет запись с предупреждением: локальное
// состояние остается видимой истиной сессии.
// Читающая блокировка закрывает гонку со Stop: пока идет отправка,
// Stop не может выставить stopped и закрыть канал
func (s *ScheduleBoardService) enqueuePush(event string, fn func(ctx context.Context) error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Мутация после остановки теряет запись так же, как переполнение
	if s.stopped {
		s.logger.Warn("board.push.after_stop", out.LogFields{
			"event": event,
		})
		return
	}

	select {
	case s.pushCh <- pushOp{event: event, fn: fn}:
	default:
		s.logger.Warn("board.push.queue_full", out.LogFields{
			"event": event,
		})
	}
}

func (s *ScheduleBoardService) runPushWorker() {
	defer close(s.done)

	for op := range s.pushCh {
		// Контекст вызова мутации к этому моменту уже мог закрыться,
		// а отмены незавершенных записей по контракту нет
		if err := op.fn(context.Background()); err != nil {
			// Без ретраев и без отката, ошибка только логируется
			s.logger.Error(op.event+".push_failed", out.LogFields{
				"error": err.Error(),
			})
			continue
		}

		s.logger.Debug(op.event+".pushed", out.LogFields{})
	}
}

// Stop закрывает очередь записи и дожидается ее полной выгрузки.
// Мутации после Stop применяются к памяти, но в стор уже не уходят
func (s *ScheduleBoardService) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.pushCh)
	})
	<-s.done
}
