package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"

	"scylla_cqltest/pkg/config"
	"scylla_cqltest/pkg/cqltest"
	"scylla_cqltest/pkg/infra"
	"scylla_cqltest/pkg/messages"
	"scylla_cqltest/pkg/observability"
)

type harnessConfig struct {
	scylla infra.ScyllaConfig

	glob  string
	suite string

	junitFile    string
	reportBucket string
	s3Endpoint   string

	notifyQueue string
	sqsEndpoint string

	eventsBrokers string
	eventsTopic   string

	lockAddr string
	lockTTL  time.Duration

	metricsAddr string
	schedule    string
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if cfg.metricsAddr != "" {
		observability.ServeMetrics(cfg.metricsAddr)
	}

	if cfg.schedule != "" {
		return runScheduled(cfg)
	}
	return runOnce(cfg)
}

// loadConfig merges the yaml config file (when given) under the flag and
// environment values and validates the required connection parameters.
func loadConfig(c *cli.Context) (*harnessConfig, error) {
	file, err := config.Load(c.String("config"))
	if err != nil {
		return nil, &runtimeError{err: err}
	}

	hosts := strOpt(c, "host", file.Scylla.Hosts)
	port := intOpt(c, "port", file.Scylla.Port)
	keyspace := strOpt(c, "keyspace", file.Scylla.Keyspace)
	if hosts == "" || port == 0 || keyspace == "" {
		return nil, newConfigError("Insufficient parameters, check help (-h)")
	}

	cfg := &harnessConfig{
		scylla: infra.ScyllaConfig{
			Hosts:    splitHosts(hosts),
			Port:     port,
			Keyspace: keyspace,
			Username: strOpt(c, "username", file.Scylla.Username),
			Password: strOpt(c, "password", file.Scylla.Password),
			SSL:      c.Bool("ssl") || file.Scylla.SSL,
			Timeout:  time.Duration(intOpt(c, "timeout", file.Scylla.TimeoutSeconds)) * time.Second,
		},
		glob:          strOpt(c, "glob", file.Suite.Glob),
		suite:         strOpt(c, "suite", file.Suite.Name),
		junitFile:     strOpt(c, "junit-file", file.Report.JUnitFile),
		reportBucket:  strOpt(c, "report-bucket", file.Report.Bucket),
		s3Endpoint:    strOpt(c, "s3-endpoint", file.Report.S3Endpoint),
		notifyQueue:   strOpt(c, "notify-queue", file.Notify.Queue),
		sqsEndpoint:   strOpt(c, "sqs-endpoint", file.Notify.SQSEndpoint),
		eventsBrokers: strOpt(c, "events-brokers", file.Events.Brokers),
		eventsTopic:   strOpt(c, "events-topic", file.Events.Topic),
		lockAddr:      strOpt(c, "lock-addr", file.Lock.Addr),
		lockTTL:       time.Duration(intOpt(c, "lock-ttl", file.Lock.TTLSeconds)) * time.Second,
		metricsAddr:   strOpt(c, "metrics-addr", file.Metrics.Addr),
		schedule:      strOpt(c, "schedule", file.Schedule),
	}
	return cfg, nil
}

// strOpt prefers the flag (or its env var) over the config file value.
func strOpt(c *cli.Context, name, fromFile string) string {
	if c.IsSet(name) || fromFile == "" {
		return c.String(name)
	}
	return fromFile
}

func intOpt(c *cli.Context, name string, fromFile int) int {
	if c.IsSet(name) || fromFile == 0 {
		return c.Int(name)
	}
	return fromFile
}

func splitHosts(csv string) []string {
	var hosts []string
	for _, h := range strings.Split(csv, ",") {
		if host := strings.TrimSpace(h); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func runOnce(cfg *harnessConfig) error {
	runID := uuid.New().String()

	if cfg.lockAddr != "" {
		release, err := acquireRunLock(cfg, runID)
		if err != nil {
			return err
		}
		defer release()
	}

	client, err := infra.NewScyllaClient(cfg.scylla)
	if err != nil {
		return newRuntimeError("failed to connect to Scylla: %v", err)
	}
	conn := cqltest.NewConn(client.Session)
	defer client.Close()

	messages.Info("run %s: executing suite %q against keyspace %q", runID, cfg.suite, cfg.scylla.Keyspace)

	replaces := map[string]string{"@KEYSPACE": cfg.scylla.Keyspace}
	report, err := cqltest.Run(cfg.glob, conn, replaces, cfg.suite)
	if err != nil {
		observability.RunsTotal.WithLabelValues("failed").Inc()
		return &runtimeError{err: err}
	}

	for _, c := range report.Cases {
		if !c.OK {
			messages.Error("%s: %s: %s", c.File, c.Name, c.Message)
		}
	}
	report.WriteTable(os.Stdout)
	messages.Report(report.Total, report.OK, report.Errors)

	if err := emitArtifacts(cfg, runID, report); err != nil {
		return err
	}
	publishEvents(cfg, runID, report)

	if report.Errors != 0 {
		observability.RunsTotal.WithLabelValues("failed").Inc()
		notifyFailure(cfg, runID, report)
		return &failuresError{errors: report.Errors}
	}
	observability.RunsTotal.WithLabelValues("passed").Inc()
	messages.OK("run %s: all %d test(s) passed", runID, report.Total)
	return nil
}

// runScheduled reruns the suite at each cron tick until interrupted. The
// exit code reflects the last completed run.
func runScheduled(cfg *harnessConfig) error {
	sched, err := cron.ParseStandard(cfg.schedule)
	if err != nil {
		return newConfigError("bad --schedule spec %q: %v", cfg.schedule, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var last error
	for {
		last = runOnce(cfg)
		if last != nil {
			messages.Warning("run finished with: %v", last)
		}
		next := sched.Next(time.Now())
		messages.Info("next run at %s", next.Format(time.RFC3339))
		select {
		case <-time.After(time.Until(next)):
		case <-sig:
			return last
		}
	}
}

func acquireRunLock(cfg *harnessConfig, runID string) (func(), error) {
	rdb, err := infra.NewRedisClient(cfg.lockAddr, "", 0)
	if err != nil {
		return nil, newRuntimeError("failed to connect to Redis: %v", err)
	}

	key := "cqltest:lock:" + cfg.scylla.Keyspace
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, err := rdb.AcquireRunLock(ctx, key, runID, cfg.lockTTL)
	if err != nil {
		rdb.Close()
		return nil, newRuntimeError("failed to take run lock: %v", err)
	}
	if !ok {
		rdb.Close()
		return nil, newRuntimeError("run lock %s is held by another run", key)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.ReleaseRunLock(ctx, key, runID); err != nil {
			log.Printf("Failed to release run lock: %v", err)
		}
		rdb.Close()
	}, nil
}

// emitArtifacts writes the JUnit report locally and/or to S3.
func emitArtifacts(cfg *harnessConfig, runID string, report *cqltest.Report) error {
	if cfg.junitFile == "" && cfg.reportBucket == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := report.WriteJUnit(&buf); err != nil {
		return newRuntimeError("failed to render JUnit report: %v", err)
	}

	if cfg.junitFile != "" {
		if err := os.WriteFile(cfg.junitFile, buf.Bytes(), 0644); err != nil {
			return newRuntimeError("failed to write JUnit report: %v", err)
		}
		messages.Info("JUnit report written to %s", cfg.junitFile)
	}

	if cfg.reportBucket != "" {
		s3Client, err := infra.NewS3Client(cfg.s3Endpoint)
		if err != nil {
			return newRuntimeError("failed to create S3 client: %v", err)
		}
		if err := s3Client.EnsureBucket(cfg.reportBucket); err != nil {
			return newRuntimeError("%v", err)
		}
		key := "reports/" + runID + ".xml"
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Client.UploadReport(ctx, cfg.reportBucket, key, buf.Bytes()); err != nil {
			observability.ReportUploadsTotal.WithLabelValues("error").Inc()
			return newRuntimeError("failed to upload report: %v", err)
		}
		observability.ReportUploadsTotal.WithLabelValues("ok").Inc()
		messages.Info("JUnit report uploaded to s3://%s/%s", cfg.reportBucket, key)
	}
	return nil
}

type caseEvent struct {
	RunID      string `json:"run_id"`
	Suite      string `json:"suite"`
	File       string `json:"file"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	ExecutedAt string `json:"executed_at"`
}

// publishEvents streams one event per case to Kafka. Best effort: a dead
// broker must not fail a finished run.
func publishEvents(cfg *harnessConfig, runID string, report *cqltest.Report) {
	if cfg.eventsBrokers == "" {
		return
	}

	producer, err := infra.NewKafkaProducer(cfg.eventsBrokers, cfg.eventsTopic)
	if err != nil {
		log.Printf("Failed to create Kafka producer: %v", err)
		observability.EventPublishErrors.Inc()
		return
	}
	defer producer.Close()

	now := time.Now().Format(time.RFC3339)
	for _, c := range report.Cases {
		status := "ok"
		if !c.OK {
			status = "error"
		}
		event := caseEvent{
			RunID:      runID,
			Suite:      c.Suite,
			File:       c.File,
			Name:       c.Name,
			Status:     status,
			Message:    c.Message,
			DurationMs: c.Duration.Milliseconds(),
			ExecutedAt: now,
		}
		payload, _ := json.Marshal(event)
		if err := producer.Publish(runID, payload); err != nil {
			log.Printf("Failed to publish result event: %v", err)
			observability.EventPublishErrors.Inc()
		}
	}
}

type failureNotice struct {
	RunID      string `json:"run_id"`
	Suite      string `json:"suite"`
	Keyspace   string `json:"keyspace"`
	Total      int    `json:"total"`
	OK         int    `json:"ok"`
	Errors     int    `json:"errors"`
	FinishedAt string `json:"finished_at"`
}

// notifyFailure sends a summary to the alerting queue. Best effort.
func notifyFailure(cfg *harnessConfig, runID string, report *cqltest.Report) {
	if cfg.notifyQueue == "" {
		return
	}

	sqsClient, err := infra.NewSQSClient(cfg.sqsEndpoint, cfg.notifyQueue)
	if err != nil {
		log.Printf("Failed to connect to SQS: %v", err)
		return
	}

	notice := failureNotice{
		RunID:      runID,
		Suite:      report.Suite,
		Keyspace:   cfg.scylla.Keyspace,
		Total:      report.Total,
		OK:         report.OK,
		Errors:     report.Errors,
		FinishedAt: time.Now().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(notice)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqsClient.SendMessage(ctx, string(payload)); err != nil {
		log.Printf("Failed to send failure notice: %v", err)
	}
}
