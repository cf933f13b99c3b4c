package handlers

import (
	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/service"
)

const dateLayout = "2006-01-02"

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		CategoryID:    ticket.CategoryID,
		ContactID:     ticket.ContactID,
		Location:      ticket.Location,
		ScheduledDate: ticket.ScheduledDate,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		CreatedByID:   ticket.CreatedByID,
		CompletedAt:   ticket.CompletedAt,
		Assignments:   assignmentResponses(ticket.Assignments),
	}
}

func assignmentResponse(a *domain.TicketAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		TechnicianID:   a.TechnicianID,
		TechnicianName: a.TechnicianName,
		IsLead:         a.IsLead,
		AssignedByID:   a.AssignedByID,
		AssignedAt:     a.AssignedAt,
	}
}

func assignmentResponses(list []domain.TicketAssignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, assignmentResponse(&list[i]))
	}
	return out
}

func activityResponses(list []domain.Activity) []dto.ActivityResponse {
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ActivityResponse{
			ID:          a.ID,
			Action:      a.Action,
			Description: a.Description,
			ActorID:     a.ActorID,
			ActorName:   a.ActorName,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		})
	}
	return out
}

func contactResponse(c *domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func technicianResponse(t *domain.Technician) dto.TechnicianResponse {
	skills := make([]dto.SkillResponse, 0, len(t.Skills))
	for _, s := range t.Skills {
		skills = append(skills, dto.SkillResponse{CategoryID: s.CategoryID, CategoryName: s.CategoryName, Level: s.Level})
	}
	return dto.TechnicianResponse{
		ID:         t.ID,
		Name:       t.Name,
		Email:      t.Email,
		Phone:      t.Phone,
		Role:       t.Role,
		Active:     t.Active,
		HourlyRate: t.HourlyRate,
		Skills:     skills,
	}
}

func timeEntryResponse(e *domain.TimeEntry) dto.TimeEntryResponse {
	return dto.TimeEntryResponse{
		ID:              e.ID,
		TicketID:        e.TicketID,
		TechnicianID:    e.TechnicianID,
		TechnicianName:  e.TechnicianName,
		CheckIn:         e.CheckIn,
		CheckOut:        e.CheckOut,
		DurationMinutes: e.DurationMinutes,
		Duration:        service.DurationFromMinutes(e.DurationMinutes).String(),
		Notes:           e.Notes,
		IsManual:        e.IsManual,
		Billable:        e.Billable,
		BillableAmount:  e.BillableAmount,
		CreatedAt:       e.CreatedAt,
	}
}

func timesheetResponse(sheet *service.Timesheet) dto.TimesheetResponse {
	entries := make([]dto.TimeEntryResponse, 0, len(sheet.Entries))
	for i := range sheet.Entries {
		entries = append(entries, timeEntryResponse(&sheet.Entries[i]))
	}
	return dto.TimesheetResponse{
		Entries:        entries,
		TotalMinutes:   sheet.Total.TotalMinutes,
		Total:          sheet.Total.String(),
		BillableAmount: sheet.BillableAmount,
	}
}

func slotResponse(s *domain.ScheduleSlot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:             s.ID,
		TicketID:       s.TicketID,
		TicketNumber:   s.TicketNumber,
		TicketTitle:    s.TicketTitle,
		TechnicianID:   s.TechnicianID,
		TechnicianName: s.TechnicianName,
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		Status:         string(s.Status),
		Notes:          s.Notes,
	}
}

func weekResponse(week *domain.Week) dto.WeekResponse {
	days := make([]dto.WeekDayResponse, 0, len(week.Days))
	for _, day := range week.Days {
		slots := make([]dto.SlotResponse, 0, len(day.Slots))
		for i := range day.Slots {
			slots = append(slots, slotResponse(&day.Slots[i]))
		}
		days = append(days, dto.WeekDayResponse{
			Date:    day.Date.Format(dateLayout),
			Weekday: day.Date.Weekday().String(),
			Slots:   slots,
		})
	}
	return dto.WeekResponse{
		Start: week.Start.Format(dateLayout),
		End:   week.End.AddDate(0, 0, -1).Format(dateLayout),
		Days:  days,
	}
}
