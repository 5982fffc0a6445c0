// attendctl is a terminal counterpart of the attendance SPA: it logs in,
// drives the admin session/user operations, submits scans, and exports the
// daily report. One invocation is one authenticated "tab": the identity
// lives only for the lifetime of the process.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prithwish249/qr-attendence/internal/client"
	"github.com/prithwish249/qr-attendence/internal/export"
	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/scanner"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "backend base URL")
	username := flag.String("username", "", "login username")
	password := flag.String("password", "", "login password")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*server)
	identity, err := c.Login(ctx, *username, *password)
	if err != nil {
		fail(err)
	}
	defer c.Logout()
	fmt.Fprintf(os.Stderr, "logged in as %s (%s), home view %s\n", identity.Username, identity.Role, c.Identity.HomeRoute())

	if err := run(ctx, c, args); err != nil {
		fail(err)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	switch args[0] {
	case "session":
		return runSession(ctx, c, args[1:])
	case "scan":
		return runScan(ctx, c, args[1:])
	case "report":
		return runReport(ctx, c, args[1:])
	case "history":
		return runHistory(ctx, c, args[1:])
	case "users":
		return runUsers(ctx, c, args[1:])
	}
	usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func runSession(ctx context.Context, c *client.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("session requires create|show|delete|qr")
	}
	switch args[0] {
	case "create":
		result, err := c.CreateSession(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", result.Message)
		fmt.Printf("date=%s token=%s\n", result.Session.Date, result.Session.QRCodeToken)
		return nil
	case "show":
		session, ok, err := c.FetchTodaySession(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no session for today")
			return nil
		}
		fmt.Printf("id=%d date=%s token=%s\n", session.ID, session.Date, session.QRCodeToken)
		return nil
	case "delete":
		message, err := c.DeleteSession(ctx)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	case "qr":
		fs := flag.NewFlagSet("session qr", flag.ExitOnError)
		out := fs.String("o", "qr.png", "output file")
		_ = fs.Parse(args[1:])

		png, err := c.FetchQRCode(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", *out, len(png))
		return nil
	}
	return fmt.Errorf("unknown session subcommand %q", args[0])
}

// runScan reads "frames" (lines) from stdin or a file through the scanner
// loop; the first non-empty line is the decoded token and is submitted.
func runScan(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	frames := fs.String("frames", "-", "frame source file, - for stdin")
	token := fs.String("token", "", "submit this token directly, skipping the scan loop")
	_ = fs.Parse(args)

	identity, ok := c.Identity.Current()
	if !ok {
		return fmt.Errorf("not logged in")
	}

	available, err := c.CheckSessionAvailable(ctx)
	if err != nil {
		return err
	}
	if !available {
		fmt.Println("No session available for today.")
		return nil
	}

	decoded := *token
	if decoded == "" {
		var src io.ReadCloser = os.Stdin
		if *frames != "-" {
			src, err = os.Open(*frames)
			if err != nil {
				return err
			}
		}
		s := scanner.New(lineDecoderOpener(src))
		decoded, err = s.Scan(ctx)
		if err != nil {
			return err
		}
	}

	outcome, err := c.SubmitAttendance(ctx, identity.Username, decoded)
	if err != nil {
		return err
	}
	fmt.Println(outcome.UserMessage())
	return nil
}

func runReport(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	format := fs.String("format", "", "export format: csv or xlsx (empty prints the table)")
	out := fs.String("o", "", "output file (default attendance_report_<date>.<format>)")
	_ = fs.Parse(args)

	records, err := c.FetchTodayReport(ctx)
	if err != nil {
		return err
	}
	stats := client.Stats(records)

	if *format == "" {
		fmt.Printf("total=%d present=%d absent=%d\n", stats.Total, stats.Present, stats.Absent)
		for _, record := range records {
			checkIn := "Not checked in"
			if record.CheckInTime != nil {
				checkIn = *record.CheckInTime
			}
			fmt.Printf("%-20s %-10s %-15s %s\n", record.Username, record.Role, checkIn, record.Status)
		}
		return nil
	}

	// Export is a local projection of the fetched list; no second request.
	var payload []byte
	switch *format {
	case "csv":
		payload, err = export.CSV(records)
	case "xlsx":
		payload, err = export.XLSX(records)
	default:
		return fmt.Errorf("format must be csv or xlsx")
	}
	if err != nil {
		return err
	}

	name := *out
	if name == "" {
		name = export.Filename(models.Today(), *format)
	}
	if err := os.WriteFile(name, payload, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d rows)\n", name, len(records))
	return nil
}

func runHistory(ctx context.Context, c *client.Client, args []string) error {
	identity, _ := c.Identity.Current()
	userID := identity.ID
	if len(args) > 0 {
		parsed, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("history user id must be an integer")
		}
		userID = parsed
	}

	entries, err := c.FetchHistory(ctx, userID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%s %s\n", entry.Date, entry.Time)
	}
	return nil
}

func runUsers(ctx context.Context, c *client.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("users requires list|add|delete|passwd")
	}
	switch args[0] {
	case "list":
		users, err := c.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Printf("%d\t%s\t%s\n", user.ID, user.Username, user.Role)
		}
		return nil
	case "add":
		fs := flag.NewFlagSet("users add", flag.ExitOnError)
		username := fs.String("username", "", "new username")
		password := fs.String("password", "", "new password")
		role := fs.String("role", models.RoleEmployee, "ADMIN or EMPLOYEE")
		_ = fs.Parse(args[1:])

		message, err := c.AddUser(ctx, *username, *password, *role)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "user id")
		yes := fs.Bool("yes", false, "confirm the deletion")
		_ = fs.Parse(args[1:])

		// Deleting an account is the one operation that demands explicit
		// confirmation before dispatch.
		if !*yes {
			return fmt.Errorf("refusing to delete user %d without -yes", *id)
		}
		message, err := c.DeleteUser(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	case "passwd":
		fs := flag.NewFlagSet("users passwd", flag.ExitOnError)
		id := fs.Int64("id", 0, "user id")
		password := fs.String("password", "", "new password")
		_ = fs.Parse(args[1:])

		message, err := c.ChangePassword(ctx, *id, *password)
		if err != nil {
			return err
		}
		fmt.Println(message)
		return nil
	}
	return fmt.Errorf("unknown users subcommand %q", args[0])
}

type lineDecoder struct {
	src     io.ReadCloser
	scanner *bufio.Scanner
}

func lineDecoderOpener(src io.ReadCloser) scanner.OpenFunc {
	return func(ctx context.Context) (scanner.Decoder, error) {
		return &lineDecoder{src: src, scanner: bufio.NewScanner(src)}, nil
	}
}

func (d *lineDecoder) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(d.scanner.Text()), nil
}

func (d *lineDecoder) Close() error {
	return d.src.Close()
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: attendctl -server URL -username U -password P <command>

commands:
  session create|show|delete|qr [-o file]
  scan [-frames file|-] [-token T]
  report [-format csv|xlsx] [-o file]
  history [user-id]
  users list
  users add -username U -password P -role ADMIN|EMPLOYEE
  users delete -id N -yes
  users passwd -id N -password P`)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
