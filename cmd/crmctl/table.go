package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/service"
)

func printTable(out io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}
	for _, row := range rows {
		measure(row)
	}
	measure(footers)

	printRow := func(cells []string) {
		for i := range colWidths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(out, "%-*s  ", colWidths[i], cell)
		}
		fmt.Fprintln(out)
	}

	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
	if len(footers) > 0 {
		printRow(footers)
	}
}

func printContacts(out io.Writer, contacts []domain.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No contacts found")
		return
	}
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{c.FullName(), c.Email, c.Phone, c.Company})
	}
	printTable(out, []string{"Name", "Email", "Phone", "Company"}, rows, nil)
}

func printStats(out io.Writer, stats *domain.TicketStats) {
	rows := [][]string{
		{"Total", fmt.Sprint(stats.Total)},
		{"Open", fmt.Sprint(stats.Open)},
		{"Urgent open", fmt.Sprint(stats.UrgentOpen)},
		{"Unassigned", fmt.Sprint(stats.Unassigned)},
		{"Completed today", fmt.Sprint(stats.CompletedToday)},
		{"Logged", service.DurationFromMinutes(int(stats.LoggedMinutes)).String()},
	}

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []string{status, fmt.Sprint(stats.ByStatus[domain.TicketStatus(status)])})
	}
	printTable(out, []string{"Metric", "Value"}, rows, nil)
}

func printWeek(out io.Writer, week *domain.Week, loc *time.Location) {
	fmt.Fprintf(out, "Week of %s\n", week.Start.In(loc).Format("Mon 02 Jan 2006"))
	var rows [][]string
	for _, day := range week.Days {
		label := day.Date.In(loc).Format("Mon 02 Jan")
		if len(day.Slots) == 0 {
			rows = append(rows, []string{label, "", "", ""})
			continue
		}
		for i, slot := range day.Slots {
			if i > 0 {
				label = ""
			}
			span := slot.StartsAt.In(loc).Format("15:04") + "-" + slot.EndsAt.In(loc).Format("15:04")
			rows = append(rows, []string{label, span, slot.TechnicianName, slot.TicketNumber + " " + slot.TicketTitle})
		}
	}
	printTable(out, []string{"Day", "Time", "Technician", "Ticket"}, rows, nil)
}

func printTimesheet(out io.Writer, sheet *service.Timesheet) {
	rows := make([][]string, 0, len(sheet.Entries))
	for _, e := range sheet.Entries {
		rows = append(rows, []string{
			e.CheckIn.Format("Jan 02, 2006"),
			e.CheckIn.Format("15:04"),
			e.CheckOut.Format("15:04"),
			service.DurationFromMinutes(e.DurationMinutes).String(),
			e.TechnicianName,
			e.Notes,
		})
	}
	footers := []string{"", "", "Total:", sheet.Total.String(), "", "Billable " + sheet.BillableAmount.StringFixed(2)}
	printTable(out, []string{"Day", "In", "Out", "Duration", "Technician", "Notes"}, rows, footers)
}
