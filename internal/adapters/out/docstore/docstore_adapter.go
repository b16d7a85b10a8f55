package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DocStoreAdapter работает с документным стором расписания: JSON-дерево
// по HTTP с позиционной адресацией плюс лента изменений через RabbitMQ.
// Записи полевые: одна мутация дает один PUT/PATCH по точному пути,
// полный состав никогда не перезаписывается
type DocStoreAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	cfg      *config.Config
	logger   out.LoggerPort

	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewDocStoreAdapter(cfg *config.Config, logger out.LoggerPort) (*DocStoreAdapter, error) {
	a := &DocStoreAdapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  cfg.Store.URL,
		username: cfg.Store.Username,
		password: cfg.Store.Password,
		cfg:      cfg,
		logger:   logger,
	}

	if !cfg.RabbitMQ.Enabled {
		logger.Info("docstore.rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, change feed will not be consumed",
		})
		return a, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("docstore.rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("docstore.rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	a.conn = conn
	a.channel = channel

	return a, nil
}

func (a *DocStoreAdapter) ReadAll(ctx context.Context) (*out.RemoteSnapshot, error) {
	a.logger.Info("docstore.snapshot.fetch", out.LogFields{})

	url := fmt.Sprintf("%s/schedule", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("docstore.snapshot.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	// Пустой стор не ошибка, доска стартует с состава по умолчанию
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		a.logger.Info("docstore.snapshot.empty", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("docstore.snapshot.fetch_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var snapshot out.RemoteSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		a.logger.Error("docstore.snapshot.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("docstore.snapshot.fetch_success", out.LogFields{
		"doctors": len(snapshot.Doctors),
		"blocks":  len(snapshot.OutpatientSlots),
	})

	return &snapshot, nil
}

func (a *DocStoreAdapter) WriteField(ctx context.Context, path out.FieldPath, value interface{}) error {
	return a.send(ctx, http.MethodPut, a.fieldURL(path), value)
}

func (a *DocStoreAdapter) WriteFields(ctx context.Context, path out.FieldPath, fields map[string]interface{}) error {
	return a.send(ctx, http.MethodPatch, a.slotURL(path), fields)
}

func (a *DocStoreAdapter) InsertBlock(ctx context.Context, key domain.CellKey) error {
	return a.send(ctx, http.MethodPut, a.blockURL(key), true)
}

func (a *DocStoreAdapter) DeleteBlock(ctx context.Context, key domain.CellKey) error {
	return a.send(ctx, http.MethodDelete, a.blockURL(key), nil)
}

// Точный путь одного поля: schedule/doctors/{i}/slots/{j}/{field},
// либо schedule/doctors/{i}/{field} для поля самого врача
func (a *DocStoreAdapter) fieldURL(path out.FieldPath) string {
	if path.SlotIndex < 0 {
		return fmt.Sprintf("%s/schedule/doctors/%d/%s", a.baseURL, path.DoctorIndex, path.Field)
	}
	return fmt.Sprintf("%s/schedule/doctors/%d/slots/%d/%s", a.baseURL, path.DoctorIndex, path.SlotIndex, path.Field)
}

func (a *DocStoreAdapter) slotURL(path out.FieldPath) string {
	return fmt.Sprintf("%s/schedule/doctors/%d/slots/%d", a.baseURL, path.DoctorIndex, path.SlotIndex)
}

func (a *DocStoreAdapter) blockURL(key domain.CellKey) string {
	return fmt.Sprintf("%s/schedule/outpatientSlots/%s", a.baseURL, nurl.PathEscape(string(key)))
}

func (a *DocStoreAdapter) send(ctx context.Context, method, url string, body interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
