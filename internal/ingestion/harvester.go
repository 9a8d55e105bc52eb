package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"wallet-behavior-lab/internal/solana"
	"wallet-behavior-lab/internal/storage"
)

// Default harvester settings.
const (
	DefaultSignaturePageLimit = 1000
	DefaultTokenDecimals      = 6 // pump.fun mints are all 6 decimals
	lamportsPerSol            = 1e9
)

// HarvesterConfig configures a Harvester.
type HarvesterConfig struct {
	// EquityURL is the provider endpoint returning a wallet's equity
	// series as a JSON array; the wallet is passed as a query parameter.
	EquityURL string
	// SolPriceUsd converts SOL-quoted swap legs to USD prices.
	SolPriceUsd float64
	// PageLimit bounds one getSignaturesForAddress page.
	PageLimit int
	// MaxSignatures bounds a whole harvest; 0 means unbounded.
	MaxSignatures int
	// Verbose enables progress logging.
	Verbose bool
}

// Harvester pulls a wallet's swap history from Solana RPC and its equity
// series from a provider HTTP endpoint, and writes both through the
// storage interfaces. Re-harvesting the same wallet is idempotent.
type Harvester struct {
	rpc        solana.RPCClient
	httpClient *http.Client
	trades     storage.TradeStore
	equity     storage.EquityPointStore
	cfg        HarvesterConfig
}

// NewHarvester creates a Harvester.
func NewHarvester(rpc solana.RPCClient, trades storage.TradeStore, equity storage.EquityPointStore, cfg HarvesterConfig) *Harvester {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultSignaturePageLimit
	}
	return &Harvester{
		rpc:        rpc,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		trades:     trades,
		equity:     equity,
		cfg:        cfg,
	}
}

// HarvestTrades walks the wallet's signature history backwards, decodes
// swap legs from each successful transaction, and stores them. Returns
// the number of newly inserted trades.
func (h *Harvester) HarvestTrades(ctx context.Context, wallet string) (int, error) {
	if err := ValidateWallet(wallet); err != nil {
		return 0, err
	}

	inserted := 0
	seen := 0
	var before string

	for {
		opts := &solana.SignaturesOpts{Limit: h.cfg.PageLimit}
		if before != "" {
			opts.Before = before
		}

		sigs, err := h.rpc.GetSignaturesForAddress(ctx, wallet, opts)
		if err != nil {
			return inserted, fmt.Errorf("get signatures: %w", err)
		}
		if len(sigs) == 0 {
			break
		}

		for _, sig := range sigs {
			seen++
			if h.cfg.MaxSignatures > 0 && seen > h.cfg.MaxSignatures {
				return inserted, nil
			}
			if sig.Err != nil || sig.BlockTime == nil {
				continue
			}

			n, err := h.ingestTransaction(ctx, wallet, sig.Signature, *sig.BlockTime*1000)
			if err != nil {
				return inserted, err
			}
			inserted += n
		}

		before = sigs[len(sigs)-1].Signature

		if h.cfg.Verbose {
			log.Printf("[harvester] wallet=%s signatures=%d trades=%d", wallet, seen, inserted)
		}
	}

	return inserted, nil
}

// ingestTransaction fetches one transaction and stores its swap legs.
func (h *Harvester) ingestTransaction(ctx context.Context, wallet, signature string, timestampMs int64) (int, error) {
	tx, err := h.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return 0, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if tx == nil || tx.Meta == nil || tx.Meta.Err != nil {
		return 0, nil
	}
	if timestampMs == 0 {
		if tx.BlockTime == 0 {
			return 0, nil
		}
		timestampMs = tx.BlockTime * 1000
	}

	legs := parseSwapLegs(tx.Meta.LogMessages)
	if len(legs) == 0 {
		return 0, nil
	}

	inserted := 0
	for _, leg := range legs {
		raw := h.legToRawTrade(wallet, signature, timestampMs, leg)

		trade, err := AdaptTrade(raw)
		if err != nil {
			// Malformed legs are dropped, matching provider-row handling
			if h.cfg.Verbose {
				log.Printf("[harvester] drop leg sig=%s: %v", signature, err)
			}
			continue
		}

		err = h.trades.Insert(ctx, trade)
		if errors.Is(err, storage.ErrDuplicateKey) {
			continue // already harvested
		}
		if err != nil {
			return inserted, fmt.Errorf("insert trade: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// legToRawTrade converts a raw swap leg into a provider-shaped row so both
// ingestion paths share one validation funnel.
func (h *Harvester) legToRawTrade(wallet, signature string, timestampMs int64, leg swapLeg) *RawTrade {
	amount := float64(leg.TokenAmount) / pow10(DefaultTokenDecimals)

	var priceUsd float64
	if amount > 0 && leg.QuoteLamports > 0 && h.cfg.SolPriceUsd > 0 {
		priceUsd = float64(leg.QuoteLamports) / lamportsPerSol * h.cfg.SolPriceUsd / amount
	}

	return &RawTrade{
		Wallet:      wallet,
		Mint:        leg.Mint,
		TxSignature: signature,
		Side:        leg.Side,
		Amount:      amount,
		PriceUsd:    priceUsd,
		Timestamp:   timestampMs,
		Program:     leg.Program,
	}
}

// HarvestEquity fetches the wallet's equity series from the provider and
// stores points not yet present. Returns the number of inserted points.
func (h *Harvester) HarvestEquity(ctx context.Context, wallet string) (int, error) {
	if err := ValidateWallet(wallet); err != nil {
		return 0, err
	}
	if h.cfg.EquityURL == "" {
		return 0, fmt.Errorf("no equity provider configured")
	}

	raw, err := h.fetchEquitySeries(ctx, wallet)
	if err != nil {
		return 0, err
	}

	points := AdaptEquityPoints(raw)
	if len(points) == 0 {
		return 0, nil
	}

	// Filter out timestamps already stored so re-harvests stay idempotent.
	existing, err := h.equity.GetByWallet(ctx, wallet)
	if err != nil {
		return 0, fmt.Errorf("load existing points: %w", err)
	}
	have := make(map[int64]struct{}, len(existing))
	for _, p := range existing {
		have[p.TimestampMs] = struct{}{}
	}

	fresh := points[:0]
	for _, p := range points {
		if _, ok := have[p.TimestampMs]; !ok {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := h.equity.InsertBulk(ctx, wallet, fresh); err != nil {
		return 0, fmt.Errorf("insert equity points: %w", err)
	}

	if h.cfg.Verbose {
		log.Printf("[harvester] wallet=%s equity points=%d new=%d", wallet, len(points), len(fresh))
	}

	return len(fresh), nil
}

// fetchEquitySeries performs the provider HTTP call. UseNumber keeps
// integer epochs intact through decoding.
func (h *Harvester) fetchEquitySeries(ctx context.Context, wallet string) ([]map[string]interface{}, error) {
	u, err := url.Parse(h.cfg.EquityURL)
	if err != nil {
		return nil, fmt.Errorf("parse equity url: %w", err)
	}
	q := u.Query()
	q.Set("wallet", wallet)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch equity series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("equity provider status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode equity series: %w", err)
	}

	return raw, nil
}

// Watch subscribes to the wallet's transaction logs and ingests swaps as
// they confirm. Blocks until ctx is done or the channel closes.
func (h *Harvester) Watch(ctx context.Context, ws solana.WSClient, wallet string) error {
	if err := ValidateWallet(wallet); err != nil {
		return err
	}

	ch, err := ws.SubscribeWallet(ctx, wallet)
	if err != nil {
		return fmt.Errorf("subscribe wallet: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return nil
			}
			if notif.Err != nil {
				continue
			}

			// BlockTime is not in the notification; the fetched
			// transaction carries it.
			n, err := h.ingestTransaction(ctx, wallet, notif.Signature, 0)
			if err != nil {
				if h.cfg.Verbose {
					log.Printf("[harvester] live ingest sig=%s: %v", notif.Signature, err)
				}
				continue
			}
			if n > 0 && h.cfg.Verbose {
				log.Printf("[harvester] live wallet=%s sig=%s trades=%d", wallet, notif.Signature, n)
			}
		}
	}
}

func pow10(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
