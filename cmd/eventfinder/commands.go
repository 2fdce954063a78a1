package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/yair/eventfinder/pkg/domain"
)

func (a *app) searchCmd() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search upcoming events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "free text"},
			&cli.StringFlag{Name: "city", Usage: "city name"},
			&cli.StringFlag{Name: "category", Usage: "classification name, e.g. Music"},
			&cli.StringFlag{Name: "from", Usage: "start bound, RFC 3339"},
			&cli.StringFlag{Name: "to", Usage: "end bound, RFC 3339"},
			&cli.IntFlag{Name: "page", Usage: "zero-based page"},
			&cli.IntFlag{Name: "size", Usage: "page size", Value: domain.DefaultPageSize},
		},
		Action: func(c *cli.Context) error {
			service, err := a.eventService()
			if err != nil {
				return err
			}

			result, err := service.SearchEvents(c.Context, domain.SearchQuery{
				Keyword:            c.String("keyword"),
				City:               c.String("city"),
				ClassificationName: c.String("category"),
				StartDateTime:      c.String("from"),
				EndDateTime:        c.String("to"),
				Page:               c.Int("page"),
				Size:               c.Int("size"),
			})
			if err != nil {
				return err
			}
			return a.printJSON(domain.NewPageView(result, time.Now()))
		},
	}
}

func (a *app) popularCmd() *cli.Command {
	return &cli.Command{
		Name:  "popular",
		Usage: "List popular events",
		Action: func(c *cli.Context) error {
			service, err := a.eventService()
			if err != nil {
				return err
			}

			result, err := service.PopularEvents(c.Context)
			if err != nil {
				return err
			}
			return a.printJSON(domain.NewPageView(result, time.Now()))
		},
	}
}

func (a *app) eventCmd() *cli.Command {
	return &cli.Command{
		Name:      "event",
		Usage:     "Show one event",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			service, err := a.eventService()
			if err != nil {
				return err
			}

			event, err := service.GetEvent(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			return a.printJSON(domain.NewEventView(*event, time.Now()))
		},
	}
}

type savedList struct {
	Events   []domain.Event `json:"events"`
	Count    int            `json:"count"`
	Capacity int            `json:"capacity"`
}

type savedStatus struct {
	ID      string `json:"id"`
	Saved   bool   `json:"saved"`
	Removed *bool  `json:"removed,omitempty"`
}

func (a *app) savedCmd() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage saved events",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved events",
				Action: func(c *cli.Context) error {
					store, closeStore, err := a.openStore(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					events := store.List()
					return a.printJSON(savedList{Events: events, Count: len(events), Capacity: store.Capacity()})
				},
			},
			{
				Name:      "add",
				Usage:     "Fetch an event and save it",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					service, err := a.eventService()
					if err != nil {
						return err
					}
					store, closeStore, err := a.openStore(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					event, err := service.GetEvent(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					result := store.Save(c.Context, *event)
					if err := a.printJSON(result); err != nil {
						return err
					}
					if !result.Success {
						return fmt.Errorf("%s: %w", result.Message, result.Reason)
					}
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a saved event",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					store, closeStore, err := a.openStore(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					id := c.Args().First()
					removed := store.Remove(c.Context, id)
					return a.printJSON(savedStatus{ID: id, Saved: store.IsSaved(id), Removed: &removed})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every saved event",
				Action: func(c *cli.Context) error {
					store, closeStore, err := a.openStore(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					store.Clear(c.Context)
					return a.printJSON(savedList{Events: store.List(), Capacity: store.Capacity()})
				},
			},
			{
				Name:      "check",
				Usage:     "Report whether an event is saved",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					store, closeStore, err := a.openStore(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					id := c.Args().First()
					return a.printJSON(savedStatus{ID: id, Saved: store.IsSaved(id)})
				},
			},
		},
	}
}
