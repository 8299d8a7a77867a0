package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/SimonRichardson/gexec"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/trussle/collector/pkg/harness"
	"github.com/trussle/collector/pkg/status"
)

func runHarness(args []string) error {
	// flags for the harness command
	var (
		flagset = flag.NewFlagSet("harness", flag.ExitOnError)

		debug   = flagset.Bool("debug", false, "debug logging")
		apiAddr = flagset.String("api", defaultAPIAddr, "listen address for harness API")

		awsID       = flagset.String("aws.id", defaultAWSID, "AWS configuration id")
		awsSecret   = flagset.String("aws.secret", defaultAWSSecret, "AWS configuration secret")
		awsToken    = flagset.String("aws.token", defaultAWSToken, "AWS configuration token")
		awsRegion   = flagset.String("aws.region", defaultAWSRegion, "AWS configuration region")
		awsSQSQueue = flagset.String("aws.sqs.queue", defaultAWSSQSQueue, "AWS configuration queue")
	)

	var envArgs []string
	flagset.VisitAll(func(flag *flag.Flag) {
		key := envName(flag.Name)
		if value, ok := syscall.Getenv(key); ok {
			envArgs = append(envArgs, fmt.Sprintf("-%s=%s", flag.Name, value))
		}
	})

	flagsetArgs := append(args, envArgs...)
	flagset.Usage = usageFor(flagset, "harness [flags]")
	if err := flagset.Parse(flagsetArgs); err != nil {
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

	apiNetwork, apiAddress, err := parseAddr(*apiAddr, defaultAPIPort)
	if err != nil {
		return err
	}
	apiListener, err := net.Listen(apiNetwork, apiAddress)
	if err != nil {
		return err
	}
	level.Debug(logger).Log("API", fmt.Sprintf("%s://%s", apiNetwork, apiAddress))

	// Configuration for the queue the harness feeds.
	creds := credentials.NewChainCredentials(
		[]credentials.Provider{
			&credentials.EnvProvider{},
			&credentials.StaticProvider{
				Value: credentials.Value{
					AccessKeyID:     *awsID,
					SecretAccessKey: *awsSecret,
					SessionToken:    *awsToken,
				},
			},
		},
	)
	if _, err := creds.Get(); err != nil {
		return errors.Wrap(err, "invalid credentials")
	}

	var (
		cfg = aws.NewConfig().
			WithRegion(*awsRegion).
			WithCredentials(creds).
			WithCredentialsChainVerboseErrors(true)
		client = sqs.New(session.New(cfg))
	)

	queueURL, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(*awsSQSQueue),
	})
	if err != nil {
		return errors.Wrap(err, "queue url")
	}

	g := gexec.NewGroup()
	gexec.Block(g)
	{
		step := time.NewTicker(10 * time.Millisecond)
		stop := make(chan chan struct{})

		g.Add(func() error {
			for {
				select {
				case <-step.C:
					level.Info(logger).Log("state", "enqueuing")

					payload := fmt.Sprintf("Ping-%s", time.Now().Format(time.RFC3339))
					if _, err := client.SendMessage(&sqs.SendMessageInput{
						QueueUrl:    queueURL.QueueUrl,
						MessageBody: aws.String(payload),
					}); err != nil {
						level.Error(logger).Log("state", "enqueue failure", "err", err)
						return err
					}

				case q := <-stop:
					level.Info(logger).Log("state", "shutting down...")
					close(q)
					return nil
				}
			}

		}, func(error) {
			q := make(chan struct{})
			stop <- q
			<-q
			return
		})
	}
	{
		g.Add(func() error {
			mux := http.NewServeMux()
			mux.Handle("/", harness.NewAPI(
				log.With(logger, "component", "harness_api"),
			))
			mux.Handle("/status/", http.StripPrefix("/status", status.NewAPI(
				log.With(logger, "component", "status_api"),
				func() bool { return true },
				nopHistogram{},
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

type nopHistogram struct{}

func (nopHistogram) Observe(value float64) {}
