package postgres

import (
	"parcel-relay/internal/domain/contract"
	"parcel-relay/internal/domain/match"
	"parcel-relay/internal/domain/notification"
	"parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/domain/relay"
	"parcel-relay/internal/domain/user"
	"parcel-relay/internal/infrastructure/database/postgres/models"
)

func toParcelModel(p *parcel.Parcel) *models.ParcelModel {
	return &models.ParcelModel{
		ID:               p.ID,
		SenderID:         p.SenderID,
		Description:      p.Description,
		WeightKg:         p.WeightKg,
		Dimensions:       p.Dimensions,
		Fragile:          p.Fragile,
		Urgent:           p.Urgent,
		TrackingNumber:   p.TrackingNumber,
		Status:           string(p.Status),
		Price:            p.Price,
		CurrentLocation:  p.CurrentLocation,
		FinalDestination: p.FinalDestination,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toParcelEntity(m *models.ParcelModel) *parcel.Parcel {
	return &parcel.Parcel{
		ID:               m.ID,
		SenderID:         m.SenderID,
		Description:      m.Description,
		WeightKg:         m.WeightKg,
		Dimensions:       m.Dimensions,
		Fragile:          m.Fragile,
		Urgent:           m.Urgent,
		TrackingNumber:   m.TrackingNumber,
		Status:           parcel.Status(m.Status),
		Price:            m.Price,
		CurrentLocation:  m.CurrentLocation,
		FinalDestination: m.FinalDestination,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMatchModel(m *match.Match) *models.MatchModel {
	return &models.MatchModel{
		ID:           m.ID,
		ParcelID:     m.ParcelID,
		CarrierID:    m.CarrierID,
		RideID:       m.RideID,
		Status:       string(m.Status),
		Segment:      m.Segment,
		RejectReason: m.RejectReason,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		AcceptedAt:   m.AcceptedAt,
	}
}

func toMatchEntity(m *models.MatchModel) *match.Match {
	return &match.Match{
		ID:           m.ID,
		ParcelID:     m.ParcelID,
		CarrierID:    m.CarrierID,
		RideID:       m.RideID,
		Status:       match.Status(m.Status),
		Segment:      m.Segment,
		RejectReason: m.RejectReason,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		AcceptedAt:   m.AcceptedAt,
	}
}

func toCheckpointModel(c *relay.Checkpoint) *models.CheckpointModel {
	return &models.CheckpointModel{
		ID:               c.ID,
		ParcelID:         c.ParcelID,
		Location:         c.Location,
		EventType:        string(c.EventType),
		NextCarrierID:    c.NextCarrierID,
		TransferCode:     c.TransferCode,
		Notes:            c.Notes,
		EstimatedArrival: c.EstimatedArrival,
		Confirmed:        c.Confirmed,
		ConfirmedAt:      c.ConfirmedAt,
		CreatedAt:        c.CreatedAt,
	}
}

func toCheckpointEntity(m *models.CheckpointModel) *relay.Checkpoint {
	return &relay.Checkpoint{
		ID:               m.ID,
		ParcelID:         m.ParcelID,
		Location:         m.Location,
		EventType:        relay.EventType(m.EventType),
		NextCarrierID:    m.NextCarrierID,
		TransferCode:     m.TransferCode,
		Notes:            m.Notes,
		EstimatedArrival: m.EstimatedArrival,
		Confirmed:        m.Confirmed,
		ConfirmedAt:      m.ConfirmedAt,
		CreatedAt:        m.CreatedAt,
	}
}

func toContractModel(c *contract.Contract) *models.ContractModel {
	return &models.ContractModel{
		ID:        c.ID,
		CarrierID: c.CarrierID,
		Status:    string(c.Status),
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		SignedAt:  c.SignedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toContractEntity(m *models.ContractModel) *contract.Contract {
	return &contract.Contract{
		ID:        m.ID,
		CarrierID: m.CarrierID,
		Status:    contract.Status(m.Status),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		SignedAt:  m.SignedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      user.Role(m.Role),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toNotificationModel(n *notification.Notification) *models.NotificationModel {
	return &models.NotificationModel{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		ParcelID:    n.ParcelID,
		Type:        n.Type,
		Message:     n.Message,
		CreatedAt:   n.CreatedAt,
		DeliveredAt: n.DeliveredAt,
	}
}

func toNotificationEntity(m *models.NotificationModel) *notification.Notification {
	return &notification.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		ParcelID:    m.ParcelID,
		Type:        m.Type,
		Message:     m.Message,
		CreatedAt:   m.CreatedAt,
		DeliveredAt: m.DeliveredAt,
	}
}
