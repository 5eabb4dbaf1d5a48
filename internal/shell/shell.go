// Package shell — интерактивное текстовое меню поверх сервиса заказов.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// OrderAPI — операции сервиса, которыми пользуется меню.
type OrderAPI interface {
	GetOrderDetails(ctx context.Context, orderID int64) (domain.Order, error)
	GetCustomerAddresses(ctx context.Context, customer domain.Customer) ([]domain.Address, error)
	CreateAddressForCustomer(ctx context.Context, customer domain.Customer, line1, city, country string) (domain.Address, error)
	ReassignShippingAddress(ctx context.Context, order *domain.Order, address domain.Address) error
	OrderExists(ctx context.Context, orderID int64) (bool, error)
}

// errInputClosed — ввод закончился посреди диалога.
var errInputClosed = errors.New("input closed")

// Shell читает команды построчно из in и пишет ответы в out.
type Shell struct {
	api    OrderAPI
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Entry
}

// New создаёт меню. logger необязателен.
func New(api OrderAPI, in io.Reader, out io.Writer, logger *log.Entry) *Shell {
	if logger == nil {
		logger = log.New().WithField("component", "shell")
	}
	return &Shell{
		api:    api,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run крутит главное меню до выбора «0», конца ввода или отмены ctx.
// Ошибки сервиса превращаются в сообщения и не прерывают цикл.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			return err
		}

		switch line {
		case "1":
			if err := s.manageShippingAddress(ctx); err != nil {
				if errors.Is(err, errInputClosed) {
					return nil
				}
				return err
			}
		case "0":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Invalid option")
		}
	}
}

func (s *Shell) printMenu() {
	s.println("")
	s.println("=== MAIN MENU ===")
	s.println("1. Change order shipping address")
	s.println("0. Exit")
	s.print("Choose an option: ")
}

func (s *Shell) manageShippingAddress(ctx context.Context) error {
	s.println("")
	s.println("---- ORDER SHIPPING ADDRESS ----")
	s.print("Enter the order ID: ")
	orderID, ok, err := s.readID()
	if err != nil || !ok {
		return err
	}

	exists, err := s.api.OrderExists(ctx, orderID)
	if err != nil {
		s.reportError("Could not look up the order", err)
		return nil
	}
	if !exists {
		s.printf("Error: there is no order with ID %d\n", orderID)
		return nil
	}

	order, err := s.api.GetOrderDetails(ctx, orderID)
	if err != nil {
		s.reportError("Could not load the order", err)
		return nil
	}
	s.printOrder(order)

	s.println("")
	s.print("Do you want to change the shipping address? (Y/N): ")
	answer, err := s.readLine()
	if err != nil {
		return err
	}
	if answer = strings.ToUpper(answer); answer != "Y" && answer != "S" {
		s.println("No changes were made.")
		return nil
	}

	s.println("")
	s.println("What do you want to do?")
	s.println("1. Create a new address")
	s.println("2. Use an existing address")
	s.print("Choose an option: ")
	choice, err := s.readLine()
	if err != nil {
		return err
	}

	var (
		address  domain.Address
		selected bool
	)
	switch choice {
	case "1":
		address, selected, err = s.createAddress(ctx, *order.Customer)
	case "2":
		address, selected, err = s.selectExistingAddress(ctx, *order.Customer)
	default:
		s.println("Invalid option.")
		return nil
	}
	if err != nil || !selected {
		return err
	}

	if err := s.api.ReassignShippingAddress(ctx, &order, address); err != nil {
		s.reportError("Error updating the address", err)
		return nil
	}
	s.println("")
	s.println("Address updated successfully")

	// Показываем зафиксированное состояние, а не локальную копию.
	updated, err := s.api.GetOrderDetails(ctx, orderID)
	if err != nil {
		s.reportError("Could not reload the order", err)
		return nil
	}
	s.println("")
	s.println("New shipping address:")
	s.printAddress(updated.ShippingAddress)

	return nil
}

func (s *Shell) createAddress(ctx context.Context, customer domain.Customer) (domain.Address, bool, error) {
	s.println("")
	s.println("--- CREATE NEW ADDRESS ---")
	s.print("Street (line1): ")
	line1, err := s.readLine()
	if err != nil {
		return domain.Address{}, false, err
	}
	s.print("City: ")
	city, err := s.readLine()
	if err != nil {
		return domain.Address{}, false, err
	}
	s.print("Country (2-letter code, e.g. ES, FR, US): ")
	country, err := s.readLine()
	if err != nil {
		return domain.Address{}, false, err
	}

	address, err := s.api.CreateAddressForCustomer(ctx, customer, line1, city, country)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.printf("Error: %v\n", err)
			return domain.Address{}, false, nil
		}
		s.reportError("Error creating the address", err)
		return domain.Address{}, false, nil
	}
	s.println("New address created successfully")

	return address, true, nil
}

func (s *Shell) selectExistingAddress(ctx context.Context, customer domain.Customer) (domain.Address, bool, error) {
	s.println("")
	s.println("--- SELECT EXISTING ADDRESS ---")

	addresses, err := s.api.GetCustomerAddresses(ctx, customer)
	if err != nil {
		s.reportError("Could not load the customer addresses", err)
		return domain.Address{}, false, nil
	}
	if len(addresses) == 0 {
		s.println("This customer has no saved addresses.")
		s.println("Please create a new address.")
		return domain.Address{}, false, nil
	}

	s.println("")
	s.println("Available addresses:")
	for i, address := range addresses {
		s.printf("%d. %s, %s, %s\n", i+1, address.Line1, address.City, address.Country)
	}

	s.println("")
	s.printf("Choose the address number (1-%d): ", len(addresses))
	line, err := s.readLine()
	if err != nil {
		return domain.Address{}, false, err
	}
	n, convErr := strconv.Atoi(line)
	if convErr != nil || n < 1 || n > len(addresses) {
		s.println("Invalid address number")
		return domain.Address{}, false, nil
	}

	return addresses[n-1], true, nil
}

func (s *Shell) printOrder(order domain.Order) {
	s.println("")
	s.println("ORDER INFORMATION")
	s.println(strings.Repeat("-", 39))
	s.printf("Order ID: %d\n", order.ID)
	s.printf("Date: %s\n", order.OrderDate.Format("2006-01-02 15:04"))
	s.printf("Status: %s\n", order.Status)
	s.printf("Total amount: $%s\n", order.TotalAmount.StringFixed(2))

	s.println("")
	s.println("CUSTOMER")
	if order.Customer != nil {
		s.printf("Name: %s\n", order.Customer.FullName)
		s.printf("Email: %s\n", order.Customer.Email)
	}

	s.println("")
	s.println("CURRENT SHIPPING ADDRESS")
	if order.ShippingAddress == nil {
		s.println("No shipping address assigned")
		return
	}
	s.printAddress(order.ShippingAddress)
}

func (s *Shell) printAddress(address *domain.Address) {
	if address == nil {
		s.println("No address")
		return
	}
	s.printf("Street: %s\n", address.Line1)
	s.printf("City: %s\n", address.City)
	s.printf("Country: %s\n", address.Country)
}

func (s *Shell) reportError(prefix string, err error) {
	s.logger.WithError(err).Warn(strings.ToLower(prefix))
	switch {
	case domain.IsNotFound(err):
		s.printf("%s: not found\n", prefix)
	case errors.Is(err, domain.ErrCrossCustomerAddress):
		s.printf("%s: the address belongs to another customer\n", prefix)
	case domain.IsRetryable(err):
		s.printf("%s: storage is temporarily unavailable, try again\n", prefix)
	default:
		s.printf("%s: %v\n", prefix, err)
	}
}

// readID читает положительный идентификатор; ok=false, если ввод не число.
func (s *Shell) readID() (int64, bool, error) {
	line, err := s.readLine()
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.ParseInt(line, 10, 64)
	if convErr != nil || id <= 0 {
		s.println("Invalid ID")
		return 0, false, nil
	}
	return id, true, nil
}

func (s *Shell) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Shell) println(text string) {
	_, _ = io.WriteString(s.out, text+"\n")
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
