package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/fatih/color"
)

var statusText = map[domain.BookingStatus]string{
	domain.BookingStatusConfirmed: "Подтверждено",
	domain.BookingStatusCancelled: "Отменено",
	domain.BookingStatusCompleted: "Завершено",
}

var classText = map[domain.TicketClass]string{
	domain.TicketClassEconomy:  "Эконом",
	domain.TicketClassBusiness: "Бизнес",
	domain.TicketClassFirst:    "Первый",
}

func (s *Shell) searchFlights(ctx context.Context) error {
	s.title.Fprintln(s.out, "Поиск рейсов")

	from, err := s.ask("Город отправления: ")
	if err != nil {
		return err
	}
	to, err := s.ask("Город прибытия: ")
	if err != nil {
		return err
	}
	dateStr, err := s.ask("Дата отправления (дд.мм.гггг) или Enter для любой: ")
	if err != nil {
		return err
	}

	query := domain.FlightSearch{DepartureCity: from, ArrivalCity: to}
	if dateStr != "" {
		// An unreadable date means any date.
		if date, err := s.parseDate(dateStr); err == nil {
			query.Date = &date
		}
	}

	found, err := s.svc.Flights.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		s.fail.Fprintln(s.out, "Рейсы не найдены.")
		return nil
	}
	s.flightTable(found)
	return nil
}

func (s *Shell) showAllFlights(ctx context.Context) error {
	s.title.Fprintln(s.out, "Все рейсы")

	all, err := s.svc.Flights.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		s.fail.Fprintln(s.out, "Рейсы не найдены.")
		return nil
	}
	s.flightTable(all)
	return nil
}

func (s *Shell) flightTable(list []domain.Flight) {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "№\tРейс\tАвиакомпания\tОткуда\tКуда\tОтправление\tПрибытие\tМест\tЦена")
	for i, f := range list {
		airline := ""
		if f.Airline != nil {
			airline = f.Airline.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i+1, f.FlightNumber, airline, f.DepartureCity, f.ArrivalCity,
			s.formatTime(f.DepartureTime), s.formatTime(f.ArrivalTime),
			f.AvailableSeats, domain.FormatRubles(f.BasePriceCents))
	}
	w.Flush()
}

func (s *Shell) bookTicket(ctx context.Context) error {
	s.title.Fprintln(s.out, "Бронирование билетов")

	all, err := s.svc.Flights.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		s.fail.Fprintln(s.out, "Рейсы не найдены.")
		return nil
	}
	options := make([]string, len(all))
	for i, f := range all {
		options[i] = fmt.Sprintf("%s - %s → %s (%s), мест: %d",
			f.FlightNumber, f.DepartureCity, f.ArrivalCity, s.formatTime(f.DepartureTime), f.AvailableSeats)
	}
	idx, ok, err := s.choose("Выберите рейс:", options)
	if err != nil {
		return err
	}
	if !ok {
		s.warn.Fprintln(s.out, "Рейс не выбран.")
		return nil
	}
	flight := all[idx]

	s.title.Fprintln(s.out, "Данные пассажира:")
	var passenger domain.Passenger
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Имя: ", &passenger.FirstName},
		{"Фамилия: ", &passenger.LastName},
		{"Номер паспорта: ", &passenger.PassportNumber},
		{"Email: ", &passenger.Email},
		{"Телефон: ", &passenger.PhoneNumber},
	}
	for _, field := range fields {
		if *field.dst, err = s.ask(field.prompt); err != nil {
			return err
		}
	}
	birth, err := s.ask("Дата рождения (дд.мм.гггг): ")
	if err != nil {
		return err
	}
	if passenger.DateOfBirth, err = s.parseDate(birth); err != nil {
		s.fail.Fprintln(s.out, "Неверный формат даты.")
		return nil
	}

	classes := make([]string, len(domain.TicketClasses))
	for i, class := range domain.TicketClasses {
		classes[i] = fmt.Sprintf("%s (%s)", classText[class], domain.FormatRubles(class.Price(flight.BasePriceCents)))
	}
	idx, ok, err = s.choose("Выберите класс:", classes)
	if err != nil {
		return err
	}
	if !ok {
		s.warn.Fprintln(s.out, "Класс не выбран.")
		return nil
	}
	class := domain.TicketClasses[idx]

	price := domain.FormatRubles(class.Price(flight.BasePriceCents))
	yes, err := s.confirm(fmt.Sprintf("Подтвердить бронирование за %s?", price))
	if err != nil {
		return err
	}
	if !yes {
		s.warn.Fprintln(s.out, "Бронирование отменено.")
		return nil
	}

	created, err := s.svc.Bookings.BookTicket(ctx, booking.BookTicketInput{
		FlightID:  flight.ID,
		Passenger: passenger,
		Class:     class,
	})
	if errors.Is(err, domain.ErrNoSeats) {
		s.fail.Fprintln(s.out, "На рейсе нет свободных мест.")
		return nil
	}
	if err != nil {
		return err
	}

	s.success.Fprintln(s.out, "Бронирование успешно создано!")
	fmt.Fprintf(s.out, "Номер бронирования: %s\n", created.BookingNumber)
	for _, t := range created.Tickets {
		fmt.Fprintf(s.out, "Номер билета: %s\n", t.TicketNumber)
	}
	return nil
}

func (s *Shell) managePassengers(ctx context.Context) error {
	s.title.Fprintln(s.out, "Управление пассажирами")

	list, err := s.svc.Passengers.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		s.fail.Fprintln(s.out, "Пассажиры не найдены.")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "№\tИмя\tФамилия\tПаспорт\tEmail\tТелефон\tДата рождения")
	for i, p := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, p.FirstName, p.LastName, p.PassportNumber, p.Email, p.PhoneNumber,
			p.DateOfBirth.In(s.loc).Format(dateLayout))
	}
	w.Flush()

	answer, err := s.ask("Номер пассажира для изменения или Enter для возврата: ")
	if err != nil || answer == "" {
		return err
	}
	n, convErr := strconv.Atoi(answer)
	if convErr != nil || n < 1 || n > len(list) {
		s.warn.Fprintln(s.out, "Пассажир не выбран.")
		return nil
	}
	return s.editPassenger(ctx, list[n-1])
}

// editPassenger keeps the current value of every field left blank. Email is
// not editable.
func (s *Shell) editPassenger(ctx context.Context, p domain.Passenger) error {
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Имя", &p.FirstName},
		{"Фамилия", &p.LastName},
		{"Номер паспорта", &p.PassportNumber},
		{"Телефон", &p.PhoneNumber},
	}
	for _, field := range fields {
		value, err := s.ask(fmt.Sprintf("%s [%s]: ", field.prompt, *field.dst))
		if err != nil {
			return err
		}
		if value != "" {
			*field.dst = value
		}
	}

	birth, err := s.ask(fmt.Sprintf("Дата рождения [%s]: ", p.DateOfBirth.In(s.loc).Format(dateLayout)))
	if err != nil {
		return err
	}
	if birth != "" {
		if p.DateOfBirth, err = s.parseDate(birth); err != nil {
			s.fail.Fprintln(s.out, "Неверный формат даты.")
			return nil
		}
	}

	if err := s.svc.Passengers.Update(ctx, &p); err != nil {
		return err
	}
	s.success.Fprintln(s.out, "Данные пассажира обновлены.")
	return nil
}

func (s *Shell) showBookings(ctx context.Context) error {
	s.title.Fprintln(s.out, "Мои бронирования")

	list, err := s.svc.Bookings.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		s.fail.Fprintln(s.out, "Бронирования не найдены.")
		return nil
	}

	for _, b := range list {
		fmt.Fprintln(s.out)
		s.title.Fprintf(s.out, "Бронирование #%d\n", b.ID)
		fmt.Fprintf(s.out, "Номер бронирования: %s\n", b.BookingNumber)
		fmt.Fprintf(s.out, "Статус: %s\n", s.statusColor(b.Status).Sprint(statusText[b.Status]))
		fmt.Fprintf(s.out, "Дата бронирования: %s\n", s.formatTime(b.BookingDate))
		fmt.Fprintf(s.out, "Общая сумма: %s\n", domain.FormatRubles(b.TotalAmountCents))

		w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Билет\tПассажир\tРейс\tКласс\tЦена")
		for _, t := range b.Tickets {
			passenger, flight := "", ""
			if t.Passenger != nil {
				passenger = t.Passenger.FullName()
			}
			if t.Flight != nil {
				flight = fmt.Sprintf("%s (%s → %s)", t.Flight.FlightNumber, t.Flight.DepartureCity, t.Flight.ArrivalCity)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				t.TicketNumber, passenger, flight, classText[t.Class], domain.FormatRubles(t.PriceCents))
		}
		w.Flush()
	}
	return nil
}

func (s *Shell) cancelBooking(ctx context.Context) error {
	s.title.Fprintln(s.out, "Отмена бронирования")

	number, err := s.ask("Введите номер бронирования: ")
	if err != nil {
		return err
	}

	found, err := s.svc.Bookings.GetByNumber(ctx, number)
	if errors.Is(err, domain.ErrNotFound) {
		s.fail.Fprintln(s.out, "Бронирование не найдено.")
		return nil
	}
	if err != nil {
		return err
	}
	if found.Status == domain.BookingStatusCancelled {
		s.fail.Fprintln(s.out, "Бронирование уже отменено.")
		return nil
	}

	yes, err := s.confirm(fmt.Sprintf("Вы уверены, что хотите отменить бронирование %s?", number))
	if err != nil {
		return err
	}
	if !yes {
		s.warn.Fprintln(s.out, "Отмена бронирования отменена.")
		return nil
	}

	if _, err := s.svc.Bookings.CancelBooking(ctx, found.ID); err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			s.fail.Fprintln(s.out, "Бронирование уже отменено.")
			return nil
		}
		return err
	}
	s.success.Fprintln(s.out, "Бронирование успешно отменено!")
	return nil
}

func (s *Shell) showStatistics(ctx context.Context) error {
	s.title.Fprintln(s.out, "Статистика")

	st, err := s.svc.Stats.Get(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Показатель\tЗначение")
	fmt.Fprintf(w, "Всего рейсов\t%d\n", st.TotalFlights)
	fmt.Fprintf(w, "Всего пассажиров\t%d\n", st.TotalPassengers)
	fmt.Fprintf(w, "Всего бронирований\t%d\n", st.TotalBookings)
	fmt.Fprintf(w, "Общая выручка\t%s\n", domain.FormatRubles(st.RevenueCents))
	return w.Flush()
}

func (s *Shell) statusColor(status domain.BookingStatus) *color.Color {
	switch status {
	case domain.BookingStatusConfirmed:
		return s.success
	case domain.BookingStatusCancelled:
		return s.fail
	default:
		return s.title
	}
}

func (s *Shell) formatTime(t time.Time) string {
	return t.In(s.loc).Format(dateTimeLayout)
}
