package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/paymentrequest"
	"github.com/elnosh/gonuts-wallet-core/token"
	"github.com/elnosh/gonuts-wallet-core/wallet"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
	"github.com/joho/godotenv"
	decodepay "github.com/nbd-wtf/ln-decodepay"
	"github.com/urfave/cli/v2"
)

var core *wallet.WalletCore

func walletDir() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(homedir, ".walletcore", "wallet")
	if err := os.MkdirAll(path, 0700); err != nil {
		log.Fatal(err)
	}
	return path
}

func mintURL() string {
	if u := os.Getenv("MINT_URL"); u != "" {
		return u
	}
	return "http://127.0.0.1:3338"
}

func setupWallet(ctx *cli.Context) error {
	dir := walletDir()
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}

	store, err := walletdb.OpenBolt(dir)
	if err != nil {
		printErr(err)
	}

	w, err := wallet.New(wallet.Config{
		MintURL: mintURL(),
		Unit:    cashu.Sat,
		Store:   store,
	})
	if err != nil {
		printErr(err)
	}

	if !w.HasSeed() {
		mnemonic, err := wallet.GenerateMnemonic(store)
		if err != nil {
			printErr(err)
		}
		if err := w.InitFromMnemonic(context.Background(), mnemonic, ""); err != nil {
			printErr(err)
		}
		fmt.Printf("new wallet created, back up this mnemonic: %v\n\n", mnemonic)
	}

	if err := w.LoadMint(context.Background()); err != nil {
		printErr(err)
	}

	core = w
	return nil
}

func main() {
	app := &cli.App{
		Name:  "walletcli",
		Usage: "cashu wallet",
		Commands: []*cli.Command{
			balanceCmd,
			mintCmd,
			sendCmd,
			receiveCmd,
			payCmd,
			mnemonicCmd,
			restoreCmd,
			decodeCmd,
			syncCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var balanceCmd = &cli.Command{
	Name:   "balance",
	Usage:  "Wallet balance",
	Before: setupWallet,
	Action: getBalance,
}

func getBalance(ctx *cli.Context) error {
	balance, err := core.Balance()
	if err != nil {
		printErr(err)
	}
	fmt.Printf("%v: %v sats\n", core.MintURL(), balance)
	return nil
}

const invoiceFlag = "quote"

var mintCmd = &cli.Command{
	Name:      "mint",
	Usage:     "Request a mint quote, or redeem a paid one",
	ArgsUsage: "[AMOUNT]",
	Before:    setupWallet,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: invoiceFlag, Usage: "redeem a previously paid quote id"},
	},
	Action: mint,
}

func mint(ctx *cli.Context) error {
	c := context.Background()

	if ctx.IsSet(invoiceFlag) {
		quoteId := ctx.String(invoiceFlag)
		state, err := core.CheckMintQuote(c, quoteId)
		if err != nil {
			printErr(err)
		}
		if state.State != "PAID" {
			printErr(fmt.Errorf("quote %v is not paid yet (state: %v)", quoteId, state.State))
		}

		proofs, err := core.Mint(c, quoteId, state.Amount)
		if err != nil {
			printErr(err)
		}
		fmt.Printf("%v sats minted\n", proofs.Amount())
		return nil
	}

	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify an amount to mint"))
	}
	amount, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil {
		printErr(errors.New("invalid amount"))
	}

	quote, err := core.RequestMintQuote(c, amount)
	if err != nil {
		printErr(err)
	}

	fmt.Printf("invoice: %v\n\n", quote.Request)
	fmt.Printf("once paid, run: walletcli mint --quote %v\n", quote.QuoteId)
	return nil
}

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "Generate a token for the given amount",
	ArgsUsage: "[AMOUNT]",
	Before:    setupWallet,
	Action:    send,
}

func send(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify an amount to send"))
	}
	amount, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil {
		printErr(err)
	}

	tok, err := core.Send(context.Background(), amount)
	if err != nil {
		printErr(err)
	}

	fmt.Println(tok)
	return nil
}

var receiveCmd = &cli.Command{
	Name:      "receive",
	Usage:     "Receive a token",
	ArgsUsage: "[TOKEN]",
	Before:    setupWallet,
	Action:    receive,
}

func receive(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("token not provided"))
	}

	proofs, err := core.Receive(context.Background(), args.First())
	if err != nil {
		printErr(err)
	}
	fmt.Printf("%v sats received\n", proofs.Amount())
	return nil
}

var payCmd = &cli.Command{
	Name:      "pay",
	Usage:     "Pay a lightning invoice",
	ArgsUsage: "[INVOICE]",
	Before:    setupWallet,
	Action:    pay,
}

func pay(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify a lightning invoice to pay"))
	}
	invoice := args.First()

	if _, err := decodepay.Decodepay(invoice); err != nil {
		printErr(fmt.Errorf("invalid invoice: %v", err))
	}

	result, err := core.PayInvoice(context.Background(), invoice)
	if err != nil {
		printErr(err)
	}

	fmt.Printf("invoice paid: %v\n", result.Paid)
	if len(result.Change) > 0 {
		fmt.Printf("%v sats returned as change\n", result.Change.Amount())
	}
	return nil
}

var mnemonicCmd = &cli.Command{
	Name:   "mnemonic",
	Usage:  "Show the wallet's restore mnemonic",
	Before: setupWallet,
	Action: mnemonic,
}

func mnemonic(ctx *cli.Context) error {
	phrase, err := core.Mnemonic()
	if err != nil {
		printErr(err)
	}
	fmt.Printf("mnemonic: %v\n", phrase)
	return nil
}

var restoreCmd = &cli.Command{
	Name:   "restore",
	Usage:  "Restore proofs from the wallet's mnemonic",
	Before: setupWallet,
	Action: restore,
}

func restore(ctx *cli.Context) error {
	results, err := core.Restore(context.Background())
	if err != nil {
		printErr(err)
	}

	var total uint64
	for _, r := range results {
		fmt.Printf("keyset %v: scanned %v, recovered %v sats\n", r.KeysetId, r.Scanned, r.Proofs.Amount())
		total += r.Proofs.Amount()
	}
	fmt.Printf("\nrestored %v sats total\n", total)
	return nil
}

var syncCmd = &cli.Command{
	Name:   "sync",
	Usage:  "Reconcile local proof state with the mint",
	Before: setupWallet,
	Action: sync,
}

func sync(ctx *cli.Context) error {
	n, err := core.SyncProofStates(context.Background())
	if err != nil {
		printErr(err)
	}
	fmt.Printf("%v proofs marked spent\n", n)
	return nil
}

var decodeCmd = &cli.Command{
	Name:      "decode",
	ArgsUsage: "[TOKEN|PAYMENT_REQUEST]",
	Usage:     "Decode a token or payment request",
	Action:    decode,
}

func decode(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("nothing to decode"))
	}
	s := args.First()

	if strings.HasPrefix(s, "creq") {
		pr, err := paymentrequest.Decode(s)
		if err != nil {
			printErr(err)
		}
		fmt.Printf("%+v\n", *pr)
		return nil
	}

	if strings.HasPrefix(s, "cashu") {
		tok, err := token.Decode(s)
		if err != nil {
			printErr(err)
		}
		fmt.Printf("mint: %v\nunit: %v\namount: %v\n", tok.Mint(), tok.Unit(), tok.Amount())
		return nil
	}

	fmt.Println("pass a token (cashuA.../cashuB...) or a payment request (creqA...)")
	return nil
}

func printErr(msg error) {
	fmt.Println(msg.Error())
	os.Exit(1)
}
