package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"gift_autobuy/pkg/application/modules"
	"gift_autobuy/pkg/logx"
)

// TaskSendMessage тип задачи asynq на отправку уведомления.
const TaskSendMessage = "notify:send_message"

const (
	queueMaxRetry = 5
	queueTimeout  = 30 * time.Second
)

type sendMessagePayload struct {
	ChatID int64  `json:"chatId"`
	Text   string `json:"text"`
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier ставит уведомления в очередь asynq, доставляет их
// обработчик NewSendMessageHandler с повторами.
type QueueNotifier struct {
	client taskEnqueuer
	queue  string
}

func NewQueueNotifier(client taskEnqueuer, queue string) *QueueNotifier {
	return &QueueNotifier{client: client, queue: queue}
}

// Notify возвращает 0 вместо id сообщения: оно ещё не отправлено.
func (n *QueueNotifier) Notify(ctx context.Context, chatID int64, text string) (int64, error) {
	payload, err := jsoniter.Marshal(sendMessagePayload{ChatID: chatID, Text: text})
	if err != nil {
		return 0, fmt.Errorf("jsoniter.Marshal: %w", err)
	}

	info, err := n.client.EnqueueContext(
		ctx,
		asynq.NewTask(TaskSendMessage, payload),
		asynq.Queue(n.queue),
		asynq.MaxRetry(queueMaxRetry),
		asynq.Timeout(queueTimeout),
	)
	if err != nil {
		return 0, fmt.Errorf("client.EnqueueContext: %w", err)
	}

	logger(ctx).Debug("notification enqueued", slog.String("task-id", info.ID), slog.Int64(logx.FieldUserID, chatID))

	return 0, nil
}

type directNotifier interface {
	Notify(ctx context.Context, chatID int64, text string) (int64, error)
}

// NewSendMessageHandler обработчик очереди, который отправляет уведомление
// через direct.
func NewSendMessageHandler(direct directNotifier) modules.AsynqHandler {
	return modules.AsynqHandler{
		Pattern: TaskSendMessage,
		Handle: func(ctx context.Context, task *asynq.Task) error {
			var payload sendMessagePayload

			if err := jsoniter.Unmarshal(task.Payload(), &payload); err != nil {
				return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
			}

			if _, err := direct.Notify(ctx, payload.ChatID, payload.Text); err != nil {
				return fmt.Errorf("direct.Notify: %w", err)
			}

			return nil
		},
	}
}
