package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"diyari_backend/internal/model"
	"diyari_backend/pkg/email"

	"gorm.io/gorm"
)

const (
	matchTitle          = "طلب عقار مطابق لعقارك"
	matchContentPattern = "يوجد شخص يبحث عن عقار مشابه لعقارك: %s"
)

// MatchQuery narrows active listings by type, category, price, bedroom and
// area bounds and preferred cities. Bounds are inclusive; preferred cities
// are OR-ed substring matches. MinBathrooms is stored but not matched on.
func MatchQuery(db *gorm.DB, req *model.PropertyRequest) *gorm.DB {
	q := db.Model(&model.Property{}).Where("properties.status = ?", model.PropertyStatusActive)

	if req.PropertyType != "" {
		q = q.Where("properties.property_type = ?", req.PropertyType)
	}
	if req.Category != "" {
		q = q.Where("properties.category = ?", req.Category)
	}
	// A zero bound is treated as unset.
	if v := floatBound(req.MinPrice); v > 0 {
		q = q.Where("properties.price >= ?", v)
	}
	if v := floatBound(req.MaxPrice); v > 0 {
		q = q.Where("properties.price <= ?", v)
	}
	if v := intBound(req.MinBedrooms); v > 0 {
		q = q.Where("properties.bedrooms >= ?", v)
	}
	if v := intBound(req.MaxBedrooms); v > 0 {
		q = q.Where("properties.bedrooms <= ?", v)
	}
	if v := floatBound(req.MinArea); v > 0 {
		q = q.Where("properties.area >= ?", v)
	}
	if v := floatBound(req.MaxArea); v > 0 {
		q = q.Where("properties.area <= ?", v)
	}

	var conditions []string
	var args []interface{}
	for _, city := range req.PreferredCities {
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		conditions = append(conditions, "properties.city LIKE ?")
		args = append(args, "%"+city+"%")
	}
	if len(conditions) > 0 {
		q = q.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}

	return q
}

func floatBound(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intBound(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func FindMatchingProperties(db *gorm.DB, req *model.PropertyRequest) ([]model.Property, error) {
	var properties []model.Property
	if err := MatchQuery(db, req).Order("properties.id").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("error finding matching properties: %w", err)
	}
	return properties, nil
}

// MatchResult is what a match pass created inside the caller's transaction.
type MatchResult struct {
	Properties    []model.Property
	Notifications []*model.Notification
}

// RunMatchPass notifies the owner of every matching listing. It must run
// inside a transaction: each insert gets its own savepoint so one failed
// notification is logged and skipped without aborting the rest.
func RunMatchPass(tx *gorm.DB, req *model.PropertyRequest) (*MatchResult, error) {
	properties, err := FindMatchingProperties(tx, req)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{}
	for i := range properties {
		property := properties[i]
		n := model.NewNotification(
			property.UserID,
			matchTitle,
			fmt.Sprintf(matchContentPattern, property.Title),
			model.PropertyMatch{RequestID: req.ID, PropertyID: property.ID},
		)

		savepoint := fmt.Sprintf("match_%d", i)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return nil, fmt.Errorf("error creating savepoint: %w", err)
		}
		if err := tx.Create(n).Error; err != nil {
			log.Printf("Error creating match notification for property %d: %v", property.ID, err)
			if err := tx.RollbackTo(savepoint).Error; err != nil {
				return nil, fmt.Errorf("error rolling back to savepoint: %w", err)
			}
			continue
		}

		result.Properties = append(result.Properties, property)
		result.Notifications = append(result.Notifications, n)
	}

	return result, nil
}

// EmailMatches tells every matched owner by mail. Runs after commit.
func EmailMatches(db *gorm.DB, req *model.PropertyRequest, properties []model.Property) {
	if email.GlobalEmailService == nil || len(properties) == 0 {
		return
	}

	ownerIDs := make([]uint, 0, len(properties))
	for _, p := range properties {
		ownerIDs = append(ownerIDs, p.UserID)
	}
	var owners []model.User
	if err := db.Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
		log.Printf("Error loading match owners: %v", err)
		return
	}
	byID := make(map[uint]model.User, len(owners))
	for _, o := range owners {
		byID[o.ID] = o
	}

	go func() {
		for _, p := range properties {
			owner, ok := byID[p.UserID]
			if !ok || owner.Email == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			err := email.GlobalEmailService.SendPropertyMatchEmail(ctx, owner.Email, email.PropertyMatchData{
				Name:          owner.DisplayName(),
				RequestTitle:  req.Title,
				PropertyTitle: p.Title,
				City:          p.City,
			})
			cancel()
			if err != nil {
				log.Printf("Error sending match email to %s: %v", owner.Email, err)
			}
		}
	}()
}
