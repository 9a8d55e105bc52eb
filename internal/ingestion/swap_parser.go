package ingestion

import (
	"regexp"
	"strconv"
	"strings"

	"wallet-behavior-lab/internal/domain"
)

// swapLeg is one decoded swap extracted from transaction logs, still in
// raw on-chain units.
type swapLeg struct {
	Mint          string
	Side          string
	TokenAmount   uint64 // raw token units, decimals not yet applied
	QuoteLamports uint64 // SOL side of the swap in lamports
	Program       string
	EventIndex    int
}

// Structured log line patterns. pump.fun emits mint and amounts as
// key=value pairs; Raydium and Orca only name the instruction, their
// amounts live in binary ray_log data we do not decode here.
var (
	buyPattern    = regexp.MustCompile(`Program log: Instruction: Buy`)
	sellPattern   = regexp.MustCompile(`Program log: Instruction: Sell`)
	mintPattern   = regexp.MustCompile(`mint=([A-Za-z0-9]+)`)
	amountPattern = regexp.MustCompile(`(?:amount|token_amount)[=:]?\s*(\d+)`)
	solPattern    = regexp.MustCompile(`sol_amount[=:]?\s*(\d+)`)
)

// parseSwapLegs extracts swap legs for the known venues from transaction
// logs. Legs whose mint cannot be established are dropped; the caller
// has no position to attribute them to.
func parseSwapLegs(logs []string) []swapLeg {
	var legs []swapLeg

	var (
		program       string
		mint          string
		tokenAmount   uint64
		quoteLamports uint64
	)

	reset := func() {
		program = ""
		mint = ""
		tokenAmount = 0
		quoteLamports = 0
	}

	for i, line := range logs {
		if p := invokedProgram(line); p != "" {
			reset()
			program = p
			continue
		}
		if program == "" {
			continue
		}
		if strings.Contains(line, "Program "+program+" success") ||
			strings.Contains(line, "Program "+program+" failed") {
			reset()
			continue
		}

		if m := mintPattern.FindStringSubmatch(line); m != nil {
			mint = m[1]
		}
		if m := amountPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				tokenAmount = v
			}
		}
		if m := solPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				quoteLamports = v
			}
		}

		isBuy := buyPattern.MatchString(line)
		isSell := sellPattern.MatchString(line)
		if !isBuy && !isSell {
			continue
		}
		if mint == "" {
			continue
		}

		side := domain.TradeSideBuy
		if isSell {
			side = domain.TradeSideSell
		}

		legs = append(legs, swapLeg{
			Mint:          mint,
			Side:          side,
			TokenAmount:   tokenAmount,
			QuoteLamports: quoteLamports,
			Program:       program,
			EventIndex:    i,
		})
	}

	return legs
}

// invokedProgram returns the known DEX program a log line invokes, if any.
func invokedProgram(line string) string {
	for program := range knownPrograms {
		if strings.Contains(line, "Program "+program+" invoke") {
			return program
		}
	}
	return ""
}
