package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/passengers"
	"github.com/Domenick1991/airtickets/internal/service/stats"
	"github.com/fatih/color"
)

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

type Services struct {
	Flights    flights.FlightUseCase
	Passengers passengers.PassengerUseCase
	Bookings   booking.BookingUseCase
	Stats      stats.StatsUseCase
}

type palette struct {
	title   *color.Color
	prompt  *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.FgBlue, color.Bold),
		prompt:  color.New(color.FgGreen),
		success: color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.title, p.prompt, p.success, p.warn, p.fail, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

type Shell struct {
	in  *bufio.Scanner
	out io.Writer
	svc Services
	loc *time.Location
	log *logger.Logger
	palette

	// lines is fed by a reader goroutine so a pending prompt can be abandoned
	// when the context is cancelled.
	lines      chan inputLine
	readerOnce sync.Once
	done       <-chan struct{}
}

type inputLine struct {
	text string
	err  error
}

type Option func(*Shell)

// WithColor forces colored output on or off. By default fatih/color decides
// from the terminal.
func WithColor(enabled bool) Option {
	return func(s *Shell) {
		s.palette = newPalette(enabled)
	}
}

// WithLocation sets the zone dates are typed and shown in.
func WithLocation(loc *time.Location) Option {
	return func(s *Shell) {
		s.loc = loc
	}
}

func New(in io.Reader, out io.Writer, svc Services, log *logger.Logger, opts ...Option) *Shell {
	s := &Shell{
		in:      bufio.NewScanner(in),
		out:     out,
		svc:     svc,
		loc:     time.Local,
		log:     log,
		palette: newPalette(!color.NoColor),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type menuItem struct {
	title  string
	action func(context.Context) error
}

func (s *Shell) menu() []menuItem {
	return []menuItem{
		{"Поиск рейсов", s.searchFlights},
		{"Просмотр всех рейсов", s.showAllFlights},
		{"Бронирование билетов", s.bookTicket},
		{"Управление пассажирами", s.managePassengers},
		{"Мои бронирования", s.showBookings},
		{"Отмена бронирования", s.cancelBooking},
		{"Статистика", s.showStatistics},
	}
}

// Run shows the main menu until the user picks exit, input ends or ctx is done.
// Business errors are printed and the loop goes on.
func (s *Shell) Run(ctx context.Context) error {
	items := s.menu()
	s.done = ctx.Done()
	s.title.Fprintln(s.out, "Система продажи авиабилетов")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprintln(s.out)
		s.title.Fprintln(s.out, "Выберите действие:")
		for i, item := range items {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, item.title)
		}
		fmt.Fprintln(s.out, "  0. Выход")

		answer, err := s.ask("> ")
		if ctx.Err() != nil {
			fmt.Fprintln(s.out)
			return nil
		}
		if errors.Is(err, io.EOF) {
			s.fail.Fprintln(s.out, "До свидания!")
			return nil
		}
		if err != nil {
			return err
		}
		if answer == "0" || strings.EqualFold(answer, "exit") {
			s.fail.Fprintln(s.out, "До свидания!")
			return nil
		}

		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 1 || n > len(items) {
			s.warn.Fprintln(s.out, "Неизвестный пункт меню.")
			continue
		}

		err = items[n-1].action(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			fmt.Fprintln(s.out)
			return nil
		case errors.Is(err, io.EOF):
			return nil
		default:
			s.log.Warn("shell action failed", "action", items[n-1].title, "error", err)
			s.fail.Fprintf(s.out, "Ошибка: %v\n", err)
		}
	}
}

func (s *Shell) ask(prompt string) (string, error) {
	s.readerOnce.Do(s.startReader)
	s.prompt.Fprint(s.out, prompt)
	select {
	case <-s.done:
		return "", context.Canceled
	case line, ok := <-s.lines:
		if !ok {
			fmt.Fprintln(s.out)
			return "", io.EOF
		}
		if line.err != nil {
			fmt.Fprintln(s.out)
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	}
}

// startReader scans input until it ends. The goroutine may outlive Run when
// the context is cancelled mid-prompt; it exits with the process.
func (s *Shell) startReader() {
	s.lines = make(chan inputLine)
	go func() {
		defer close(s.lines)
		for s.in.Scan() {
			s.lines <- inputLine{text: s.in.Text()}
		}
		if err := s.in.Err(); err != nil {
			s.lines <- inputLine{err: err}
		}
	}()
}

func (s *Shell) confirm(prompt string) (bool, error) {
	answer, err := s.ask(prompt + " [y/n]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}

// choose prints numbered options and reads a 1-based choice. ok is false when
// the input is empty or out of range.
func (s *Shell) choose(title string, options []string) (int, bool, error) {
	s.prompt.Fprintln(s.out, title)
	for i, option := range options {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, option)
	}
	answer, err := s.ask("> ")
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(answer)
	if convErr != nil || n < 1 || n > len(options) {
		return 0, false, nil
	}
	return n - 1, true, nil
}

func (s *Shell) parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, s.loc)
}
