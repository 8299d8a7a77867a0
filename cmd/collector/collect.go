package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/SimonRichardson/flagset"
	"github.com/SimonRichardson/gexec"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trussle/fsys"

	"github.com/trussle/collector/pkg/audit"
	"github.com/trussle/collector/pkg/consumer"
	h "github.com/trussle/collector/pkg/http"
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/receiver"
	"github.com/trussle/collector/pkg/status"
	"github.com/trussle/collector/pkg/telemetry"
	"github.com/trussle/collector/pkg/transport"
)

const (
	defaultTransport        = "remote"
	defaultReceiveMode      = "peeklock"
	defaultTelemetry        = "log"
	defaultAuditLog         = "nop"
	defaultAuditLogRootPath = "bin"
	defaultFilesystem       = "nop"

	defaultAWSID     = ""
	defaultAWSSecret = ""
	defaultAWSToken  = ""
	defaultAWSRegion = "eu-west-1"

	defaultAWSSQSQueue           = ""
	defaultAWSSQSDeadLetterQueue = ""
	defaultAWSFirehoseStream     = ""

	defaultRecipientURL        = ""
	defaultNumConsumers        = 2
	defaultMaxNumberOfMessages = 5
	defaultLockDuration        = "1m"
	defaultOperationTimeout    = "1m"
	defaultMetricsRegistration = true
)

func runCollect(args []string) error {
	// flags for the collect command
	var (
		flags = flagset.NewFlagSet("collect", flag.ExitOnError)

		debug   = flags.Bool("debug", false, "debug logging")
		apiAddr = flags.String("api", defaultAPIAddr, "listen address for collect API")

		awsID     = flags.String("aws.id", defaultAWSID, "AWS configuration id")
		awsSecret = flags.String("aws.secret", defaultAWSSecret, "AWS configuration secret")
		awsToken  = flags.String("aws.token", defaultAWSToken, "AWS configuration token")
		awsRegion = flags.String("aws.region", defaultAWSRegion, "AWS configuration region")

		awsSQSQueue           = flags.String("aws.sqs.queue", defaultAWSSQSQueue, "AWS configuration queue")
		awsSQSDeadLetterQueue = flags.String("aws.sqs.deadletter.queue", defaultAWSSQSDeadLetterQueue, "AWS configuration dead-letter queue")
		awsFirehoseStream     = flags.String("aws.firehose.stream", defaultAWSFirehoseStream, "AWS configuration stream")

		transportType    = flags.String("transport", defaultTransport, "type of transport to use (remote, virtual, nop)")
		receiveMode      = flags.String("mode", defaultReceiveMode, "receive mode to use (peeklock, receivedelete)")
		telemetryType    = flags.String("telemetry", defaultTelemetry, "type of telemetry sink to use (log, metrics, nop)")
		auditLogType     = flags.String("auditlog", defaultAuditLog, "type of audit log to use (remote, local, nop)")
		auditLogRootPath = flags.String("auditlog.path", defaultAuditLogRootPath, "audit log root directory for the filesystem to use")
		filesystemType   = flags.String("filesystem", defaultFilesystem, "type of filesystem backing (local, virtual, nop)")

		recipientURL = flags.String("recipient.url", defaultRecipientURL, "URL to hit with the message payload")
		numConsumers = flags.Int("num.consumers", defaultNumConsumers, "number of consumers to run at once")

		maxNumberOfMessages = flags.Int("max.messages", defaultMaxNumberOfMessages, "max number of messages to receive at once")
		lockDuration        = flags.String("lock.duration", defaultLockDuration, "how long a received message stays locked to this process")
		operationTimeout    = flags.String("operation.timeout", defaultOperationTimeout, "upper bound for a single broker operation")

		metricsRegistration = flags.Bool("metrics.registration", defaultMetricsRegistration, "Registration of metrics on launch")
	)

	flags.Usage = usageFor(flags, "collect [flags]")
	if err := flags.Parse(args); err != nil {
		return nil
	}

	// Setup the logger.
	var logger log.Logger
	{
		logLevel := level.AllowInfo()
		if *debug {
			logLevel = level.AllowAll()
		}
		logger = log.NewLogfmtLogger(os.Stdout)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = level.NewFilter(logger, logLevel)
	}

	// Instrumentation
	connectedClients := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "collector",
		Name:      "connected_clients",
		Help:      "Number of currently connected clients by modality.",
	}, []string{"modality"})
	apiDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "collector",
		Name:      "api_request_duration_seconds",
		Help:      "API request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	consumedMessages := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "consumed_messages",
		Help:      "Messages received from the broker.",
	})
	forwardedMessages := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "forwarded_messages",
		Help:      "Messages forwarded to the recipient.",
	})
	settledMessages := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "settled_messages",
		Help:      "Messages completed against the broker.",
	})
	abandonedMessages := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "abandoned_messages",
		Help:      "Messages released back to the broker.",
	})
	renewedLocks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "renewed_locks",
		Help:      "Message locks renewed before lapsing.",
	})
	operationsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "operations_started",
		Help:      "Broker operations started.",
	})
	operationsStopped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "operations_stopped",
		Help:      "Broker operations finished.",
	})
	operationExceptions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "operation_exceptions",
		Help:      "Broker operations that failed.",
	})

	if *metricsRegistration {
		prometheus.MustRegister(
			connectedClients,
			apiDuration,
			consumedMessages,
			forwardedMessages,
			settledMessages,
			abandonedMessages,
			renewedLocks,
			operationsStarted,
			operationsStopped,
			operationExceptions,
		)
	}

	apiNetwork, apiAddress, err := parseAddr(*apiAddr, defaultAPIPort)
	if err != nil {
		return err
	}
	apiListener, err := net.Listen(apiNetwork, apiAddress)
	if err != nil {
		return err
	}
	level.Debug(logger).Log("API", fmt.Sprintf("%s://%s", apiNetwork, apiAddress))

	// Duration setup.
	lockDurationValue, err := time.ParseDuration(*lockDuration)
	if err != nil {
		return err
	}
	operationTimeoutValue, err := time.ParseDuration(*operationTimeout)
	if err != nil {
		return err
	}

	mode, err := models.ParseReceiveMode(*receiveMode)
	if err != nil {
		return err
	}

	// Filesystem setup.
	fsysConfig, err := fsys.Build(
		fsys.With(*filesystemType),
	)
	if err != nil {
		return errors.Wrap(err, "filesystem config")
	}

	fs, err := fsys.New(fsysConfig)
	if err != nil {
		return errors.Wrap(err, "filesystem")
	}

	// Firehose setup.
	auditRemoteConfig, err := audit.BuildRemoteConfig(
		audit.WithID(*awsID),
		audit.WithSecret(*awsSecret),
		audit.WithToken(*awsToken),
		audit.WithRegion(*awsRegion),
		audit.WithStream(*awsFirehoseStream),
	)
	if err != nil {
		return errors.Wrap(err, "audit remote config")
	}

	// Create the HTTP clients we'll use for various purposes.
	timeoutClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 5 * time.Second,
			Dial: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).Dial,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   false,
			MaxIdleConnsPerHost: 1,
		},
	}

	// Configuration for the transport
	transportRemoteConfig, err := transport.BuildConfig(
		transport.WithID(*awsID),
		transport.WithSecret(*awsSecret),
		transport.WithToken(*awsToken),
		transport.WithRegion(*awsRegion),
		transport.WithQueue(*awsSQSQueue),
		transport.WithDeadLetterQueue(*awsSQSDeadLetterQueue),
		transport.WithMaxNumberOfMessages(int64(*maxNumberOfMessages)),
		transport.WithVisibilityTimeout(lockDurationValue),
	)
	if err != nil {
		return errors.Wrap(err, "transport remote config")
	}

	transportConfig, err := transport.Build(
		transport.With(*transportType),
		transport.WithConfig(transportRemoteConfig),
		transport.WithReceiveMode(mode),
		transport.WithLockDuration(lockDurationValue),
	)
	if err != nil {
		return errors.Wrap(err, "transport config")
	}

	// Telemetry sink for the receivers.
	telemetryConfig, err := telemetry.Build(
		telemetry.With(*telemetryType),
		telemetry.WithLogger(log.With(logger, "component", "telemetry")),
		telemetry.WithCounters(&telemetry.Counters{
			Started:    operationsStarted,
			Stopped:    operationsStopped,
			Exceptions: operationExceptions,
		}),
	)
	if err != nil {
		return errors.Wrap(err, "telemetry config")
	}

	// Execution group.
	g := gexec.NewGroup()
	gexec.Block(g)
	{
		for i := 0; i < *numConsumers; i++ {

			consumerRootDir := filepath.Join(*auditLogRootPath, fmt.Sprintf("audit-%04d", i))
			auditLocalConfig, err := audit.BuildLocalConfig(
				audit.WithRootPath(consumerRootDir),
				audit.WithFsys(fs),
			)
			if err != nil {
				return errors.Wrap(err, "audit local config")
			}

			auditConfig, err := audit.Build(
				audit.With(*auditLogType),
				audit.WithRemoteConfig(auditRemoteConfig),
				audit.WithLocalConfig(auditLocalConfig),
			)
			if err != nil {
				return errors.Wrap(err, "audit config")
			}

			hook, err := transport.New(transportConfig, log.With(logger, "component", "transport"))
			if err != nil {
				return err
			}

			sink, err := telemetry.New(telemetryConfig)
			if err != nil {
				return err
			}

			rcv, err := receiver.New(*awsSQSQueue, hook,
				receiver.WithMode(mode),
				receiver.WithOperationTimeout(operationTimeoutValue),
				receiver.WithSink(sink),
			)
			if err != nil {
				return err
			}

			consumerLog, err := audit.New(auditConfig, log.With(logger, "component", "audit"))
			if err != nil {
				return err
			}

			// Create the consumer
			c := consumer.New(
				h.NewClient(timeoutClient, *recipientURL),
				rcv,
				consumerLog,
				consumedMessages,
				forwardedMessages,
				settledMessages,
				abandonedMessages,
				renewedLocks,
				log.With(logger, "component", fmt.Sprintf("consumer-%d", i)),
			)
			g.Add(func() error {
				c.Run()
				return nil
			}, func(error) {
				c.Stop()
			})
		}
	}
	{
		g.Add(func() error {
			mux := http.NewServeMux()
			mux.Handle("/status/", http.StripPrefix("/status", status.NewAPI(
				log.With(logger, "component", "status_api"),
				func() bool { return true },
				apiDuration,
			)))

			registerMetrics(mux)
			registerProfile(mux)

			return http.Serve(apiListener, mux)
		}, func(error) {
			apiListener.Close()
		})
	}
	gexec.Interrupt(g)
	return g.Run()
}
