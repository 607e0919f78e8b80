// checkin-signer produces the attestation a gate operator submits to
// POST /api/v1/events/:id/checkins. The key must belong to the address the
// engine is configured with as ENGINE_CHECKIN_SIGNER.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mahimasingh04/OpenEvent/internal/checkin"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		keyHex    string
		eventID   uint64
		holder    string
		timestamp uint64
		verbose   bool
	)

	flagSet := pflag.NewFlagSet("checkin-signer", pflag.ContinueOnError)
	flagSet.StringVar(&keyHex, "key", os.Getenv("CHECKIN_SIGNER_KEY"), "hex private key of the check-in signer (default $CHECKIN_SIGNER_KEY)")
	flagSet.Uint64Var(&eventID, "event", 0, "event id")
	flagSet.StringVar(&holder, "holder", "", "holder address")
	flagSet.Uint64Var(&timestamp, "timestamp", 0, "unix seconds of the check-in (default now)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "print the signer address and digest as well")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if keyHex == "" {
		return fmt.Errorf("--key is required")
	}
	if eventID == 0 {
		return fmt.Errorf("--event is required")
	}
	holderAddr, _, err := checkin.ParseAddress(holder)
	if err != nil {
		return fmt.Errorf("invalid --holder: %w", err)
	}
	if timestamp == 0 {
		timestamp = uint64(time.Now().Unix())
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return fmt.Errorf("invalid --key: %w", err)
	}
	sig, err := checkin.Sign(eventID, holderAddr, timestamp, key)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	if verbose {
		fmt.Printf("signer:    %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
		fmt.Printf("digest:    %s\n", hexutil.Encode(checkin.Digest(eventID, holderAddr, timestamp)))
		fmt.Printf("timestamp: %d\n", timestamp)
	}
	fmt.Println(hexutil.Encode(sig))
	return nil
}
