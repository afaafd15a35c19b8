package storage

import "github.com/trackme/parcels/internal/repository"

func toRepoParcel(p *Parcel) *repository.Parcel {
	return &repository.Parcel{
		ID:                p.ID,
		TrackingNumber:    p.TrackingNumber,
		CourierServiceID:  p.CourierServiceID,
		SenderName:        p.Sender.Name,
		SenderEmail:       p.Sender.Email,
		SenderPhone:       p.Sender.Phone,
		SenderAddress:     p.Sender.Address,
		RecipientName:     p.Recipient.Name,
		RecipientEmail:    p.Recipient.Email,
		RecipientPhone:    p.Recipient.Phone,
		RecipientAddress:  p.Recipient.Address,
		ItemDescription:   p.Item.Description,
		ItemWeight:        p.Item.Weight,
		ItemLength:        p.Item.Dimensions.Length,
		ItemWidth:         p.Item.Dimensions.Width,
		ItemHeight:        p.Item.Dimensions.Height,
		ItemCategory:      p.Item.Category,
		Status:            string(p.Status),
		EstimatedDelivery: p.EstimatedDelivery,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func fromRepoParcel(r *repository.Parcel, history []HistoryEntry) *Parcel {
	return &Parcel{
		ID:               r.ID,
		TrackingNumber:   r.TrackingNumber,
		CourierServiceID: r.CourierServiceID,
		Sender: Party{
			Name:    r.SenderName,
			Email:   r.SenderEmail,
			Phone:   r.SenderPhone,
			Address: r.SenderAddress,
		},
		Recipient: Party{
			Name:    r.RecipientName,
			Email:   r.RecipientEmail,
			Phone:   r.RecipientPhone,
			Address: r.RecipientAddress,
		},
		Item: Item{
			Description: r.ItemDescription,
			Weight:      r.ItemWeight,
			Dimensions: Dimensions{
				Length: r.ItemLength,
				Width:  r.ItemWidth,
				Height: r.ItemHeight,
			},
			Category: r.ItemCategory,
		},
		Status:            Status(r.Status),
		StatusHistory:     history,
		EstimatedDelivery: r.EstimatedDelivery,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toRepoHistoryEntry(parcelID string, e HistoryEntry) *repository.HistoryEntry {
	return &repository.HistoryEntry{
		ParcelID:  parcelID,
		Status:    string(e.Status),
		Location:  e.Location,
		Notes:     e.Notes,
		UpdatedBy: e.UpdatedBy,
		ChangedAt: e.Timestamp,
	}
}

func fromRepoHistory(entries []*repository.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			Status:    Status(e.Status),
			Location:  e.Location,
			Notes:     e.Notes,
			Timestamp: e.ChangedAt,
			UpdatedBy: e.UpdatedBy,
		}
	}
	return out
}
