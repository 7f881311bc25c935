package cmd

import (
	"log/slog"
	"os"

	"github.com/meko-christian/mail-sweeper/internal/classifier"
	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/mailbox"
	"github.com/meko-christian/mail-sweeper/internal/report"
	"github.com/meko-christian/mail-sweeper/internal/spammodel"
	"github.com/meko-christian/mail-sweeper/internal/textnorm"
	"github.com/meko-christian/mail-sweeper/internal/triage"
	"github.com/meko-christian/mail-sweeper/internal/unsubscribe"
)

// newService wires the pipeline from cfg. With withModel unset the poll
// classifier is rules only and no model is loaded.
func newService(cfg config.Config, withModel bool) (*triage.Service, error) {
	rules := classifier.DefaultRules()

	svc := &triage.Service{
		Connector: triage.MailboxConnector(mailbox.NewManager(cfg.IMAP)),
		Sweeper:   rules,
		Poller:    rules,
		Unsubscriber: unsubscribe.New(nil, unsubscribe.Options{
			Timeout:   cfg.Unsubscribe.Timeout,
			Rate:      cfg.Unsubscribe.Rate,
			UserAgent: cfg.Unsubscribe.UserAgent,
		}),
		Sweep:    cfg.Sweep.Enabled,
		Interval: cfg.Poll.Interval,
		Backoff:  cfg.Poll.Backoff,
		Out:      os.Stdout,
	}

	if withModel {
		norm := textnorm.New()
		detector, err := spammodel.LoadOrTrain(cfg.Model.Path, cfg.Model.VectorizerPath, cfg.Model.Dataset, norm)
		if err != nil {
			return nil, err
		}
		svc.Poller = classifier.Chain{
			rules,
			&classifier.Probabilistic{Normalizer: norm, Scorer: detector, Threshold: cfg.Classifier.Threshold},
		}
	}

	if cfg.Report.Enabled() {
		svc.Notifier = report.NewMailer(cfg.Report)
		slog.Debug("Summaries will be mailed", "recipients", cfg.Report.To)
	}

	return svc, nil
}
