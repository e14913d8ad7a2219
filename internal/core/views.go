package core

import (
	"strconv"

	"residentbook-backend-go/internal/listview"
	"residentbook-backend-go/internal/models"
)

func bookingServiceName(b *models.Booking) string {
	if b.ServiceName != "" {
		return b.ServiceName
	}
	return b.ServiceID
}

// AdminBookingTable is the all-bookings list: searchable by customer,
// email, service, date and slot; sorted by date by default.
func AdminBookingTable(pageSize int) *listview.Table[*models.Booking] {
	return listview.NewTable(pageSize, "date",
		listview.Column[*models.Booking]{Name: "customerName", Searchable: true, Value: func(b *models.Booking) string { return b.CustomerName }},
		listview.Column[*models.Booking]{Name: "email", Searchable: true, Value: func(b *models.Booking) string { return b.Email }},
		listview.Column[*models.Booking]{Name: "serviceName", Searchable: true, Value: bookingServiceName},
		listview.Column[*models.Booking]{Name: "date", Kind: listview.Date, Searchable: true, Value: func(b *models.Booking) string { return b.Date }},
		listview.Column[*models.Booking]{Name: "slot", Searchable: true, Value: func(b *models.Booking) string { return b.Slot }, Compare: compareLabels},
	)
}

// ResidentBookingTable is a resident's own bookings. Email is not searched.
func ResidentBookingTable(pageSize int) *listview.Table[*models.Booking] {
	return listview.NewTable(pageSize, "date",
		listview.Column[*models.Booking]{Name: "customerName", Searchable: true, Value: func(b *models.Booking) string { return b.CustomerName }},
		listview.Column[*models.Booking]{Name: "serviceName", Searchable: true, Value: bookingServiceName},
		listview.Column[*models.Booking]{Name: "date", Kind: listview.Date, Searchable: true, Value: func(b *models.Booking) string { return b.Date }},
		listview.Column[*models.Booking]{Name: "slot", Searchable: true, Value: func(b *models.Booking) string { return b.Slot }, Compare: compareLabels},
	)
}

// AdminSlotTable is the admin slot list for one service day, searched by label.
func AdminSlotTable(pageSize int) *listview.Table[*models.Slot] {
	return listview.NewTable(pageSize, "slot",
		listview.Column[*models.Slot]{Name: "slot", Searchable: true, Value: func(s *models.Slot) string { return s.Slot }, Compare: compareLabels},
		listview.Column[*models.Slot]{Name: "date", Kind: listview.Date, Value: func(s *models.Slot) string { return s.Date }},
		listview.Column[*models.Slot]{Name: "isBooked", Value: func(s *models.Slot) string { return strconv.FormatBool(s.IsBooked) }},
	)
}
