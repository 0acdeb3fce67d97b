package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/config"
	"github.com/iurnickita/bakery/internal/logger"
	"github.com/iurnickita/bakery/internal/payment"
)

var ErrPaymentNotCompleted = errors.New("payment not completed")

type payOptions struct {
	orderID string
	number  string
	phone   string
	amount  string
	token   string
}

func newPayCmd(v *viper.Viper) *cobra.Command {
	var opts payOptions
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Request an M-Pesa payment for an order and wait for the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return pay(cmd, v, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.orderID, "order", "", "backend order id")
	flags.StringVar(&opts.number, "number", "", "order number shown to the customer")
	flags.StringVar(&opts.phone, "phone", "", "M-Pesa phone number")
	flags.StringVar(&opts.amount, "amount", "", "amount to charge; read from the order when empty")
	flags.StringVar(&opts.token, "token", "", "backend bearer token")
	cmd.MarkFlagRequired("order")
	cmd.MarkFlagRequired("phone")
	return cmd
}

func pay(cmd *cobra.Command, v *viper.Viper, opts payOptions) error {
	cfg, err := config.GetConfig(v)
	if err != nil {
		return err
	}
	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	ctx := cmd.Context()
	if opts.token != "" {
		ctx = backend.WithToken(ctx, opts.token)
	}
	client := backend.NewClient(cfg.Backend, zaplog)

	req := payment.Request{OrderID: opts.orderID, OrderNumber: opts.number, Phone: opts.phone}
	if opts.amount != "" {
		if req.Amount, err = decimal.NewFromString(opts.amount); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	} else {
		order, err := client.GetOrder(ctx, opts.orderID)
		if err != nil {
			return fmt.Errorf("get order %s: %w", opts.orderID, err)
		}
		req.Amount = order.Data.Total
		if req.OrderNumber == "" {
			req.OrderNumber = order.Number
		}
	}

	workflow := payment.NewWorkflow(cfg.Payment, client, zaplog)
	out := cmd.OutOrStdout()
	done := make(chan payment.Attempt, 1)
	workflow.Subscribe(func(a payment.Attempt) {
		fmt.Fprintf(out, "%s: %s\n", a.Status, payment.Message(a))
		if a.Status.Terminal() {
			select {
			case done <- a:
			default:
			}
		}
	})

	if err = workflow.StartPayment(ctx, req); err != nil {
		return err
	}

	select {
	case a := <-done:
		if a.Status != payment.StatusCompleted {
			return fmt.Errorf("%w: %s", ErrPaymentNotCompleted, a.Status)
		}
		zaplog.Info("payment completed", zap.String("order", a.OrderID), zap.Int("polls", a.Polls))
		return nil
	case <-ctx.Done():
		workflow.Cancel()
		return ctx.Err()
	}
}
