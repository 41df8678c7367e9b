// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"vaultroom/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumRooms    int
	ShouldClean bool
}

var folderNames = []string{
	"Financials", "Legal", "HR", "Contracts", "IP", "Tax",
	"Board Materials", "Compliance", "Insurance", "Customers",
}

// Seed populates the database with demo users, rooms, folders, grants,
// and access requests.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Seeding %d users and %d rooms...", opts.NumUsers, opts.NumRooms)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	rooms, err := createRooms(db, r, users, opts.NumRooms)
	if err != nil {
		return fmt.Errorf("failed to create rooms: %w", err)
	}
	log.Printf("created %d rooms", len(rooms))

	if err := createGrantsAndRequests(db, r, users, rooms); err != nil {
		return fmt.Errorf("failed to create grants and requests: %w", err)
	}

	log.Println("Seeding completed.")
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.ActivityRecord{},
		&models.AccessRequest{},
		&models.Grant{},
		&models.Folder{},
		&models.DataRoom{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:    gofakeit.Email(),
			Verified: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createRooms(db *gorm.DB, r *rand.Rand, users []models.User, n int) ([]models.DataRoom, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own rooms")
	}

	rooms := make([]models.DataRoom, 0, n)
	for i := 0; i < n; i++ {
		owner := users[r.Intn(len(users))]

		// Spread expirations so active, expiring, and expired rooms all
		// show up in a freshly seeded database.
		var expiresAt *time.Time
		switch r.Intn(4) {
		case 0:
			// no expiration
		case 1:
			t := time.Now().UTC().Add(time.Duration(90+r.Intn(90)) * 24 * time.Hour)
			expiresAt = &t
		case 2:
			t := time.Now().UTC().Add(time.Duration(1+r.Intn(6)) * 24 * time.Hour)
			expiresAt = &t
		default:
			t := time.Now().UTC().Add(-time.Duration(1+r.Intn(20)) * 24 * time.Hour)
			expiresAt = &t
		}

		room := models.DataRoom{
			Name:      fmt.Sprintf("%s Data Room", gofakeit.Company()),
			OwnerID:   owner.ID,
			ExpiresAt: expiresAt,
		}
		if err := db.Create(&room).Error; err != nil {
			return nil, err
		}

		if err := createFolders(db, r, &room, owner.ID); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func createFolders(db *gorm.DB, r *rand.Rand, room *models.DataRoom, ownerID uint) error {
	count := 2 + r.Intn(4)
	for i := 0; i < count; i++ {
		folder := models.Folder{
			DataRoomID:      room.ID,
			Name:            folderNames[r.Intn(len(folderNames))],
			CreatedByUserID: ownerID,
		}
		if err := db.Create(&folder).Error; err != nil {
			return err
		}

		// Occasionally add a subfolder for tree depth.
		if r.Intn(2) == 0 {
			child := models.Folder{
				DataRoomID:      room.ID,
				ParentID:        &folder.ID,
				Name:            gofakeit.BuzzWord(),
				CreatedByUserID: ownerID,
			}
			if err := db.Create(&child).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createGrantsAndRequests(db *gorm.DB, r *rand.Rand, users []models.User, rooms []models.DataRoom) error {
	capPresets := []models.CapabilitySet{
		models.NewCapabilitySet(models.CapabilityView),
		models.NewCapabilitySet(models.CapabilityView, models.CapabilityDownload),
		models.NewCapabilitySet(models.CapabilityView, models.CapabilityDownload, models.CapabilityEdit),
		models.NewCapabilitySet(models.CapabilityView, models.CapabilityAdmin),
	}

	grants, requests := 0, 0
	for _, room := range rooms {
		for _, user := range users {
			if user.ID == room.OwnerID {
				continue
			}
			switch r.Intn(6) {
			case 0:
				grant := models.Grant{
					DataRoomID:      room.ID,
					UserID:          user.ID,
					Capabilities:    capPresets[r.Intn(len(capPresets))],
					GrantedByUserID: room.OwnerID,
				}
				if err := db.Create(&grant).Error; err != nil {
					return err
				}
				grants++
			case 1:
				if room.ArchivedAt != nil {
					continue
				}
				request := models.AccessRequest{
					DataRoomID:  room.ID,
					RequesterID: user.ID,
					Reason:      gofakeit.Sentence(8),
					Status:      models.AccessRequestStatusPending,
				}
				if err := db.Create(&request).Error; err != nil {
					return err
				}
				requests++
			}
		}
	}
	log.Printf("created %d grants and %d pending requests", grants, requests)
	return nil
}
