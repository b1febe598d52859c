/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tasks

import (
	"time"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

// Notifier receives user-visible notifications. Implementations must not block.
type Notifier interface {
	Notify(n models.Notification)
}

// ChannelNotifier buffers notifications for a presentation layer. When the
// buffer is full new notifications are dropped.
type ChannelNotifier struct {
	ch chan models.Notification
}

// NewChannelNotifier returns a notifier with the given buffer size.
func NewChannelNotifier(size int) *ChannelNotifier {
	if size <= 0 {
		size = 32
	}

	return &ChannelNotifier{ch: make(chan models.Notification, size)}
}

// Notify implements Notifier.
func (c *ChannelNotifier) Notify(n models.Notification) {
	select {
	case c.ch <- n:
	default:
	}
}

// Notifications returns the receive side of the buffer.
func (c *ChannelNotifier) Notifications() <-chan models.Notification {
	return c.ch
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(n models.Notification) {
	ev := l.logger.Info()

	switch n.Level {
	case models.NotificationError:
		ev = l.logger.Error()
	case models.NotificationWarning:
		ev = l.logger.Warn()
	case models.NotificationInfo, models.NotificationSuccess:
	}

	ev.Str("level", string(n.Level)).Str("task_id", n.TaskID).Msg(n.Message)
}

// Notifiers fans a notification out to several notifiers.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(n models.Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

func notification(level models.NotificationLevel, taskID, message string) models.Notification {
	return models.Notification{Level: level, Message: message, Time: time.Now(), TaskID: taskID}
}
