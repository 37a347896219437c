package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kevin07696/argus-gateway/internal/adapters/argus"
	"github.com/kevin07696/argus-gateway/internal/adapters/argus/argustest"
	"github.com/kevin07696/argus-gateway/internal/adapters/ports"
	"github.com/kevin07696/argus-gateway/internal/adapters/secrets"
	"github.com/kevin07696/argus-gateway/internal/config"
	"github.com/kevin07696/argus-gateway/internal/domain"
	"github.com/kevin07696/argus-gateway/pkg/observability"
	"go.uber.org/zap"
)

func main() {
	var (
		op          = flag.String("op", "", "Operation: purchase, authorize, capture, void, refund, verify")
		amount      = flag.Int64("amount", 100, "Amount in minor units")
		amountMajor = flag.String("amount-major", "", "Amount in major units, e.g. 1.00 (overrides -amount)")
		currency    = flag.String("currency", "USD", "Currency code")
		cardNumber  = flag.String("card", "", "Card number")
		expMonth    = flag.Int("month", 0, "Card expiry month")
		expYear     = flag.Int("year", 0, "Card expiry year")
		cvv         = flag.String("cvv", "", "Card verification value")
		holder      = flag.String("name", "", "Cardholder name")
		token       = flag.String("token", "", "Stored card token (instead of raw card)")
		orderIDF    = flag.String("order", "", "Customer order id")
		merchAcct   = flag.String("merch-acct", "", "Merchant account id (authorize/purchase)")
		liProdID    = flag.String("li-prod", "", "Line item product id (authorize/purchase)")
		authRef     = flag.String("auth", "", "Authorization reference (capture/void/refund)")
		useFake     = flag.Bool("fake", false, "Run against an in-process fake Argus host")
		transcript  = flag.Bool("transcript", false, "Print the scrubbed wire transcript")
	)
	flag.Parse()

	if *op == "" {
		fmt.Println("Usage: argusctl -op=<operation> [options]")
		fmt.Println("Operations: purchase, authorize, capture, void, refund, verify")
		os.Exit(1)
	}

	cfg, err := loadConfig(*useFake)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	metricsServer := observability.StartMetricsServer(cfg.Metrics.Port)
	defer observability.ShutdownMetricsServer(metricsServer)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Gateway.Timeout)*time.Second)
	defer cancel()

	gatewayCfg := argus.DefaultConfig(cfg.Gateway.Environment)
	creds, err := resolveCredentials(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to resolve gateway credentials", zap.Error(err))
	}

	var fake *argustest.Server
	if *useFake {
		fake = argustest.New()
		defer fake.Close()
		gatewayCfg.BaseURL = fake.URL
		creds = domain.Credentials{
			SiteID:   argustest.SiteID,
			Username: argustest.Username,
			Password: argustest.Password,
		}
		if *merchAcct == "" {
			*merchAcct = argustest.MerchantAccountID
		}
		if *liProdID == "" {
			*liProdID = argustest.LineItemProductID
		}
	}

	var wire bytes.Buffer
	if *transcript {
		gatewayCfg.TranscriptWriter = &wire
	}

	gateway := argus.NewWithDefaults(gatewayCfg, creds, logger)

	money := domain.Money{Amount: *amount, Currency: *currency}
	if *amountMajor != "" {
		money, err = domain.NewMoneyFromMajorString(*amountMajor, *currency)
		if err != nil {
			logger.Fatal("Invalid amount", zap.String("amount", *amountMajor), zap.Error(err))
		}
	}
	opts := domain.RequestOptions{
		OrderID:           *orderIDF,
		MerchantAccountID: *merchAcct,
		LineItemProductID: *liProdID,
	}

	var instrument domain.PaymentInstrument
	if *token != "" {
		instrument = domain.StoredCard{Token: *token}
	} else if *cardNumber != "" {
		instrument = domain.CreditCard{
			Number:            *cardNumber,
			ExpMonth:          *expMonth,
			ExpYear:           *expYear,
			VerificationValue: *cvv,
			HolderName:        *holder,
		}
	}

	var response *ports.Response
	switch *op {
	case "purchase":
		response, err = gateway.Purchase(ctx, money, instrument, opts)
	case "authorize":
		response, err = gateway.Authorize(ctx, money, instrument, opts)
	case "capture":
		response, err = gateway.Capture(ctx, money, *authRef)
	case "void":
		response, err = gateway.Void(ctx, *authRef)
	case "refund":
		response, err = gateway.Refund(ctx, money, *authRef)
	case "verify":
		response, err = gateway.Verify(ctx, instrument, opts)
	default:
		logger.Fatal("Unknown operation", zap.String("op", *op))
	}

	if err != nil {
		logger.Fatal("Operation failed before a gateway decision", zap.Error(err))
	}

	printResponse(response)

	if *transcript {
		fmt.Println("--- transcript (scrubbed) ---")
		fmt.Print(gateway.Scrub(wire.String()))
	}
}

func loadConfig(useFake bool) (*config.Config, error) {
	if useFake {
		// The fake host brings its own fixture credentials
		os.Setenv("ARGUS_SITE_ID", argustest.SiteID)
		os.Setenv("ARGUS_REQ_USERNAME", argustest.Username)
		os.Setenv("ARGUS_REQ_PASSWORD", argustest.Password)
	}
	return config.LoadFromEnv()
}

func newLogger(cfg config.Logger) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// resolveCredentials loads gateway credentials from the configured backend
func resolveCredentials(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.Credentials, error) {
	switch cfg.Secrets.Backend {
	case "env":
		return domain.Credentials{
			SiteID:   cfg.Gateway.SiteID,
			Username: cfg.Gateway.Username,
			Password: cfg.Gateway.Password,
		}, nil
	case "local":
		sm := secrets.NewLocalSecretManager(cfg.Secrets.LocalDir, logger)
		return secrets.LoadCredentials(ctx, sm, cfg.Secrets.Path)
	case "aws":
		sm, err := secrets.NewAWSSecretsManagerAdapter(ctx,
			secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion), logger)
		if err != nil {
			return domain.Credentials{}, err
		}
		return secrets.LoadCredentials(ctx, sm, cfg.Secrets.Path)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddr)
		vaultCfg.Token = cfg.Secrets.VaultToken
		sm, err := secrets.NewVaultAdapter(ctx, vaultCfg, logger)
		if err != nil {
			return domain.Credentials{}, err
		}
		return secrets.LoadCredentials(ctx, sm, cfg.Secrets.Path)
	default:
		return domain.Credentials{}, fmt.Errorf("unsupported secrets backend %q", cfg.Secrets.Backend)
	}
}

func printResponse(r *ports.Response) {
	out := map[string]interface{}{
		"success":       r.Success,
		"message":       r.Message,
		"authorization": r.Authorization,
		"order_id":      r.OrderID,
	}
	if r.AVSResult.Code != "" {
		out["avs"] = r.AVSResult.Code
	}
	if r.CVVResult.Code != "" {
		out["cvv"] = r.CVVResult.Code
	}
	if r.NetworkTransactionID != "" {
		out["network_transaction_id"] = r.NetworkTransactionID
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}
