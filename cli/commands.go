package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/discovery"
	"github.com/castawaylabs/statuspage/notify"
	"github.com/castawaylabs/statuspage/render"
	"github.com/castawaylabs/statuspage/watch"
	"github.com/castawaylabs/statuspage/webhook"
)

func (a *app) dispatch(command string) error {
	ctx := context.Background()

	switch command {
	case "summary":
		return a.summary(ctx)
	case "status":
		return a.status(ctx)
	case "components":
		return a.components(ctx)
	case "incidents":
		return a.incidents(ctx)
	case "incident":
		id, _ := a.opts.String("<id>")
		return a.incident(ctx, id)
	case "webhook":
		file, _ := a.opts.String("<file>")
		return a.webhook(ctx, file)
	case "watch":
		return a.watch()
	case "serve":
		return a.serve()
	case "resolve":
		domain, _ := a.opts.String("<domain>")
		return a.resolve(ctx, domain)
	}

	return fmt.Errorf("unknown command %q", command)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) summary(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	s, err := client.Summary(ctx)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(s)
	}
	return render.Summary(a.out, s)
}

func (a *app) status(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	s, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(s)
	}

	subject, message := a.cfg.Templates.Status.Exec(s)
	fmt.Fprintf(a.out, "%s\n%s\n", subject, message)
	return nil
}

func (a *app) components(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	components, err := client.Components(ctx)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(components)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, c := range components {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, render.Humanize(c.Status))
	}
	return tw.Flush()
}

func (a *app) incidents(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	incidents, err := client.Incidents(ctx)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(incidents)
	}

	for _, inc := range incidents {
		a.printIncident(inc)
	}
	return nil
}

func (a *app) incident(ctx context.Context, id string) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	inc, err := client.Incident(ctx, id)
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.printJSON(inc)
	}

	a.printIncident(inc)
	for _, u := range inc.IncidentUpdates {
		fmt.Fprintf(a.out, "  %s  %s: %s\n", u.DisplayAt.Format(time.RFC3339), render.Humanize(u.Status), u.Body)
	}
	return nil
}

func (a *app) printIncident(inc statuspage.Incident) {
	subject, message := a.cfg.Templates.Incident.Exec(inc)
	fmt.Fprintf(a.out, "%s  %s\n  %s\n", inc.ID, subject, message)
}

func (a *app) webhook(ctx context.Context, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	hook, err := webhook.Parse(data)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"page": hook.Page.ID, "kind": hook.Payload.Kind()}).Debug("Parsed notification")

	if a.asJSON {
		return a.printJSON(hook)
	}

	a.printNotification(hook)
	return nil
}

func (a *app) printNotification(hook *webhook.StatusWebhook) {
	var subject, message string

	switch p := hook.Payload.(type) {
	case *webhook.ComponentPayload:
		subject, message = a.cfg.Templates.Component.Exec(p.Component)
	case *webhook.IncidentPayload:
		subject, message = a.cfg.Templates.Incident.Exec(p.Incident)
	default:
		subject, message = "Unrecognized notification", hook.Page.StatusDescription
	}

	fmt.Fprintf(a.out, "[%s] %s\n%s\n", hook.Payload.Kind(), subject, message)
}

func (a *app) slack() *notify.Slack {
	if len(a.cfg.Webhook.SlackURL) == 0 {
		return nil
	}
	return &notify.Slack{WebhookURL: a.cfg.Webhook.SlackURL}
}

// waitForSignal cancels the returned context on SIGINT or SIGTERM.
func waitForSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			logrus.Warnf("Abort: shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()

	return ctx, cancel
}

func (a *app) watch() error {
	client, err := a.client()
	if err != nil {
		return err
	}

	ctx, cancel := waitForSignal()
	defer cancel()

	slack := a.slack()
	w := &watch.Watcher{
		Source:   client,
		Interval: a.cfg.Watch.Interval,
		Logger:   a.log,
		OnChange: func(prev, cur statuspage.Status) {
			subject, message := a.cfg.Templates.Status.Exec(cur)
			fmt.Fprintf(a.out, "%s  %s\n  %s\n", time.Now().Format(time.RFC3339), subject, message)

			if slack == nil {
				return
			}
			if err := slack.Send(ctx, notify.NewStatusMessage(a.cfg.BaseURL, prev, cur)); err != nil {
				a.log.Errorf("Unable to notify slack: %v", err)
			}
		},
		OnError: func(err error) {
			a.log.Warnf("Poll failed: %v", err)
		},
	}

	a.log.Infof("Watching %s every %v", client.BaseURL(), a.cfg.Watch.Interval)

	wg := &sync.WaitGroup{}
	w.Start(ctx, wg)
	wg.Wait()

	return nil
}

func (a *app) serve() error {
	ctx, cancel := waitForSignal()
	defer cancel()

	slack := a.slack()
	handler := &webhook.Handler{
		MaxBodyBytes: a.cfg.Webhook.MaxBodyBytes,
		Logger:       a.log,
		Handle: func(ctx context.Context, hook *webhook.StatusWebhook) error {
			a.printNotification(hook)
			if slack == nil {
				return nil
			}
			return slack.Notify(ctx, hook)
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", handler)
	server := &http.Server{
		Addr:              a.cfg.Webhook.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		a.log.Infof("Listening for notifications on %s/webhook", a.cfg.Webhook.Listen)
		errC <- server.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return server.Shutdown(shutdownCtx)
}

func (a *app) resolve(ctx context.Context, domain string) error {
	r := discovery.NewResolver(a.cfg.DNSServer)

	chain, err := r.LookupCNAME(ctx, domain)
	if err != nil && !errors.Is(err, discovery.ErrNoCNAME) {
		return err
	}
	hosted := discovery.Hosted(chain)

	if a.asJSON {
		return a.printJSON(map[string]interface{}{
			"domain": domain,
			"chain":  chain,
			"hosted": hosted,
		})
	}

	for _, target := range chain {
		fmt.Fprintf(a.out, "%s\n", target)
	}
	if hosted {
		fmt.Fprintf(a.out, "%s is hosted on Statuspage\n", domain)
	} else {
		fmt.Fprintf(a.out, "%s is not hosted on Statuspage\n", domain)
	}
	return nil
}
