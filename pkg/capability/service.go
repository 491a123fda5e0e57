// Package capability реализует запрос обновления capabilities удаленного
// контакта через SIP OPTIONS. Завершение файловой сессии удаленной стороной -
// сигнал возможного устаревания известных capabilities, поэтому ядро сессий
// запрашивает их обновление fire-and-forget.
package capability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emiago/sipgo"
	"github.com/emiago/sipgo/sip"
	"github.com/pkg/errors"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// Service отправляет capability запросы через SIP клиента.
type Service struct {
	ua     *sipgo.UserAgent
	client *sipgo.Client
	cfg    settings.SipConfig
	logger *slog.Logger
}

// NewService создает capability сервис поверх собственного SIP клиента.
func NewService(cfg settings.SipConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ua, err := sipgo.NewUA(
		sipgo.WithUserAgent(cfg.UserAgent),
		sipgo.WithUserAgentHostname(cfg.Host),
	)
	if err != nil {
		return nil, errors.Wrap(err, "создание SIP user agent")
	}
	client, err := sipgo.NewClient(ua)
	if err != nil {
		return nil, errors.Wrap(err, "создание SIP клиента")
	}
	return &Service{
		ua:     ua,
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "capability"),
	}, nil
}

// RequestContactCapabilities отправляет OPTIONS запрос контакту и дожидается
// финального ответа либо истечения контекста. Ответ 200 OK несет актуальный
// набор capabilities; любой другой финальный ответ трактуется как отсутствие
// RCS возможностей у контакта.
func (s *Service) RequestContactCapabilities(ctx context.Context, c contact.ContactId) error {
	target := sip.Uri{
		User: c.SipUser(),
		Host: s.cfg.Host,
		Port: s.cfg.Port,
	}
	req := sip.NewRequest(sip.OPTIONS, target)
	req.AppendHeader(sip.NewHeader("Accept-Contact", "*;+g.3gpp.icsi-ref=\"urn%3Aurn-7%3A3gpp-service.ims.icsi.oma.cpm.filetransfer\""))

	s.logger.Debug("запрос capabilities", "contact", c.String())
	res, err := s.client.Do(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "OPTIONS запрос контакту %s", c)
	}
	if res.StatusCode != sip.StatusOK {
		s.logger.Info("контакт не подтвердил capabilities",
			"contact", c.String(), "status", res.StatusCode)
		return fmt.Errorf("OPTIONS отклонен: %d %s", res.StatusCode, res.Reason)
	}
	s.logger.Debug("capabilities обновлены", "contact", c.String())
	return nil
}

// Close освобождает ресурсы SIP клиента.
func (s *Service) Close() error {
	if err := s.ua.Close(); err != nil {
		return errors.Wrap(err, "закрытие SIP user agent")
	}
	return nil
}
