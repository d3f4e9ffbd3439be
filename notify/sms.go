package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"cradi/config"
)

type noopSMSSender struct{}

func (noopSMSSender) SendSMS(ctx context.Context, msg SMSMessage) (*SMSResult, error) {
	return nil, ErrSMSNotConfigured
}

// NewSMSSender picks the configured gateway, falling back to a sender that
// always reports ErrSMSNotConfigured.
func NewSMSSender(cfg config.SMSConfig, log *logrus.Logger) SMSSender {
	if !cfg.Enabled() {
		if cfg.Provider != "" {
			log.Warnf("SMS_PROVIDER is %q but its credentials are missing, SMS alerts are disabled", cfg.Provider)
		} else {
			log.Warn("SMS_PROVIDER is not set, SMS alerts are disabled")
		}
		return noopSMSSender{}
	}

	switch cfg.Provider {
	case config.SMSKavenegar:
		log.WithField("sender", cfg.KavenegarSender).Info("Using Kavenegar SMS gateway")
		return NewKavenegarSender(cfg.KavenegarAPIKey, cfg.KavenegarSender)
	default:
		log.WithField("sender", cfg.AfricasTalkingSenderID).Info("Using Africa's Talking SMS gateway")
		return NewAfricasTalkingSender(
			cfg.AfricasTalkingEndpoint,
			cfg.AfricasTalkingAPIKey,
			cfg.AfricasTalkingUsername,
			cfg.AfricasTalkingSenderID,
			cfg.Timeout,
		)
	}
}
