// Package console implements the interactive back-office menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

const title = "Grocery Store Management Console"

// Deps groups the services the menu drives.
type Deps struct {
	Reports services.ReportService
	Publish services.PublishService
	Store   services.StoreService
}

// Console reads menu choices from in and writes prompts and results to out.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	deps   Deps
	logger *zap.Logger
}

// New creates a console over the given reader and writer.
func New(in io.Reader, out io.Writer, deps Deps, logger *zap.Logger) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		deps:   deps,
		logger: logger.Named("console"),
	}
}

// Run shows the main menu until the user exits or input ends. Operation
// failures are printed and the loop continues.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.printf("\n=== %s ===\n", title)
		c.printf("1. Generate Report\n")
		c.printf("2. Generate Graph\n")
		c.printf("3. Upload and Refresh Power BI Report\n")
		c.printf("4. Send Report via Email\n")
		c.printf("5. Execute Predefined Operations (e.g., Update Inventory, Calculate Loyalty Points)\n")
		c.printf("6. Exit\n")

		choice, ok := c.prompt("Enter your choice: ")
		if !ok {
			return c.inputErr()
		}

		var err error
		switch choice {
		case "1":
			err = c.generateReport(ctx)
		case "2":
			err = c.generateGraph(ctx)
		case "3":
			err = c.uploadAndRefresh(ctx)
		case "4":
			err = c.sendEmail(ctx)
		case "5":
			err = c.operations(ctx)
		case "6":
			c.printf("Exiting... Goodbye!\n")
			return nil
		default:
			c.printf("Invalid choice. Please try again.\n")
			continue
		}

		if errors.Is(err, errInputClosed) {
			return c.inputErr()
		}
		if err != nil {
			c.report(err)
		}
	}
}

var errInputClosed = errors.New("input closed")

func (c *Console) generateReport(ctx context.Context) error {
	c.printf("\n=== Generate Report ===\n")
	reportType, period, err := c.promptTypeAndPeriod("report")
	if err != nil {
		return err
	}

	out, err := c.deps.Reports.GenerateReport(ctx, reportType, period, "")
	if err != nil {
		return err
	}
	c.printf("Report saved to %s (%s).\n", out.Path, countOf(out.Rows, "row"))
	return nil
}

func (c *Console) generateGraph(ctx context.Context) error {
	c.printf("\n=== Generate Graph ===\n")
	graphType, period, err := c.promptTypeAndPeriod("graph")
	if err != nil {
		return err
	}
	live, ok := c.prompt("Chart live data instead of the saved CSV? (y/N): ")
	if !ok {
		return errInputClosed
	}

	var out *services.GraphOutput
	if strings.EqualFold(live, "y") || strings.EqualFold(live, "yes") {
		out, err = c.deps.Reports.GenerateGraphLive(ctx, graphType, period, "")
	} else {
		out, err = c.deps.Reports.GenerateGraph(ctx, graphType, period, "", "")
	}
	if err != nil {
		return err
	}
	c.printf("Graph saved to %s (%s).\n", out.Path, countOf(out.Bars, "bar"))
	return nil
}

func (c *Console) uploadAndRefresh(ctx context.Context) error {
	c.printf("\n=== Refresh Power BI Report ===\n")
	reportType, period, err := c.promptTypeAndPeriod("report")
	if err != nil {
		return err
	}

	result, err := c.deps.Publish.UploadAndRefresh(ctx, reportType, period)
	if err != nil {
		return err
	}
	c.printf("Uploaded %s to table %s.\n", countOf(result.Rows, "row"), result.Table)
	if result.ViewURL != "" {
		c.printf("View the report at %s\n", result.ViewURL)
	}
	return nil
}

func (c *Console) sendEmail(ctx context.Context) error {
	c.printf("\n=== Send Report via Email ===\n")
	fields := []string{
		"Enter recipient email: ",
		"Enter subject: ",
		"Enter message body: ",
		"Enter attachment path (leave blank for none): ",
	}
	answers := make([]string, len(fields))
	for i, f := range fields {
		v, ok := c.prompt(f)
		if !ok {
			return errInputClosed
		}
		answers[i] = v
	}
	if answers[0] == "" {
		return errors.New("recipient email is required")
	}

	res, err := c.deps.Publish.EmailReport(ctx, answers[0], answers[1], answers[2], answers[3])
	if err != nil {
		return err
	}
	c.printf("Email sent to %s (status %d).\n", answers[0], res.StatusCode)
	if answers[3] != "" && !res.AttachmentIncluded {
		c.printf("Attachment %s was not found and was left out.\n", answers[3])
	}
	return nil
}

func (c *Console) operations(ctx context.Context) error {
	c.printf("\n=== Predefined Operations ===\n")
	c.printf("1. Update Inventory\n")
	c.printf("2. Calculate Loyalty Points\n")
	c.printf("3. Back\n")

	choice, ok := c.prompt("Enter your choice: ")
	if !ok {
		return errInputClosed
	}

	switch choice {
	case "1":
		productID, err := c.promptInt("Enter product ID: ")
		if err != nil {
			return err
		}
		qty, err := c.promptInt("Enter quantity sold: ")
		if err != nil {
			return err
		}
		if err := c.deps.Store.UpdateInventory(ctx, productID, int(qty)); err != nil {
			return err
		}
		c.printf("Inventory updated: %s removed from product %d.\n", countOf(int(qty), "unit"), productID)
	case "2":
		customerID, err := c.promptInt("Enter customer ID: ")
		if err != nil {
			return err
		}
		raw, ok := c.prompt("Enter order total: ")
		if !ok {
			return errInputClosed
		}
		total, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid amount %q", raw)
		}
		points, err := c.deps.Store.CalculateLoyaltyPoints(ctx, customerID, total)
		if err != nil {
			return err
		}
		c.printf("Added %s to customer %d.\n", countOf(points, "loyalty point"), customerID)
	case "3":
	default:
		c.printf("Invalid choice.\n")
	}
	return nil
}

func (c *Console) promptTypeAndPeriod(kind string) (string, string, error) {
	typ, ok := c.prompt(fmt.Sprintf("Enter %s type (e.g., earnings, spending, product_performance, least_selling): ", kind))
	if !ok {
		return "", "", errInputClosed
	}
	period, ok := c.prompt("Enter time period (e.g., monthly, quarterly, annually): ")
	if !ok {
		return "", "", errInputClosed
	}
	return typ, period, nil
}

func (c *Console) promptInt(label string) (int64, error) {
	raw, ok := c.prompt(label)
	if !ok {
		return 0, errInputClosed
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return n, nil
}

func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) inputErr() error {
	if err := c.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// report prints a user-facing message for err.
func (c *Console) report(err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidReportType), errors.Is(err, apperrors.ErrInvalidGraphType):
		c.printf("Error: %v\n", err)
	case errors.Is(err, apperrors.ErrFileNotFound):
		c.printf("Error: %v. Generate the report first.\n", err)
	case errors.Is(err, apperrors.ErrNoData):
		c.printf("Nothing to plot: %v\n", err)
	case errors.Is(err, apperrors.ErrNotConfigured):
		c.printf("Error: %v. Check the configuration.\n", err)
	default:
		c.logger.Error("Console operation failed", zap.Error(err))
		c.printf("Error: %v\n", err)
	}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// countOf renders "1 row" or "3 rows".
func countOf(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
