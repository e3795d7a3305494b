package main

import (
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"backstage/pubsub"
	"backstage/pubsub/poisonqueue"
)

func newQueue(c *cli.Context) *poisonqueue.Queue {
	rdb := pubsub.NewRedisClient(c.String("redis-addr"))
	watermillLogger := log.NewWatermill(log.FromContext(c.Context))

	return poisonqueue.New(rdb, pubsub.PoisonQueueTopic, pubsub.NewRedisPublisher(rdb, watermillLogger))
}

func main() {
	log.Init(logrus.InfoLevel)

	app := &cli.App{
		Name:  "poison-queue",
		Usage: "Manage the backstage poison queue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "redis-addr",
				EnvVars:  []string{"REDIS_ADDR"},
				Required: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "preview",
				Usage: "preview messages",
				Action: func(c *cli.Context) error {
					messages, err := newQueue(c).Preview(c.Context)
					if err != nil {
						return err
					}

					for _, m := range messages {
						fmt.Printf("%v\t%v\t%v\t%v\n", m.ID, m.Topic, m.Handler, m.Reason)
					}

					return nil
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<message_id>",
				Usage:     "remove message",
				Action: func(c *cli.Context) error {
					return newQueue(c).Remove(c.Context, c.Args().First())
				},
			},
			{
				Name:      "requeue",
				ArgsUsage: "<message_id>",
				Usage:     "publish message back to its original topic",
				Action: func(c *cli.Context) error {
					return newQueue(c).Requeue(c.Context, c.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
