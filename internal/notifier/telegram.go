package notifier

import (
	"context"
	"errors"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"time"
)

type apiInterface interface {
	Send(c botApi.Chattable) (botApi.Message, error)
}

// TelegramDispatcher sends notifications to the applicant's private chat.
// Notifications carrying an already sent dedup_key are dropped.
type TelegramDispatcher struct {
	api       apiInterface
	templates *Templates
	limiter   *rate.Limiter
	sent      *gocache.Cache
}

func NewTelegramDispatcher(token string, maxMessagesPerSecond float32, templates *Templates) (*TelegramDispatcher, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	if err = botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}

	return newTelegramDispatcher(api, maxMessagesPerSecond, templates)
}

func newTelegramDispatcher(api apiInterface, maxMessagesPerSecond float32, templates *Templates) (*TelegramDispatcher, error) {
	if api == nil {
		return nil, errors.New("api is nil")
	}
	if templates == nil {
		return nil, errors.New("templates are nil")
	}
	if maxMessagesPerSecond <= 0 {
		return nil, errors.New("max messages per second must be greater than zero")
	}

	return &TelegramDispatcher{
		api:       api,
		templates: templates,
		limiter:   rate.NewLimiter(rate.Limit(maxMessagesPerSecond), 1),
		sent:      gocache.New(24*time.Hour, time.Hour),
	}, nil
}

func (d *TelegramDispatcher) Enqueue(ctx context.Context, userID int64, templateCode string, variables map[string]string) error {

	key := variables["dedup_key"]
	if key != "" {
		if _, found := d.sent.Get(key); found {
			log.Debugf("notification %s already sent, skipping", key)
			return nil
		}
	}

	text, err := d.templates.Render(templateCode, variables)
	if err != nil {
		return err
	}

	if err = d.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err = d.api.Send(botApi.NewMessage(userID, text)); err != nil {
		return err
	}

	if key != "" {
		d.sent.SetDefault(key, struct{}{})
	}
	return nil
}
