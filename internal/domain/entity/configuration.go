package entity

import (
	"slices"

	"github.com/samber/lo"
)

// Configuration состояние одного пользователя, хранится целиком.
type Configuration struct {
	UserID            int64
	Balance           int64
	Active            bool
	LastMenuMessageID *int64
	Profiles          []Profile
	Userbot           UserbotState
}

type UserbotState struct {
	Enabled bool
	Balance int64
}

func DefaultConfiguration(userID int64) Configuration {
	return Configuration{
		UserID:   userID,
		Profiles: []Profile{DefaultProfile(userID)},
	}
}

func (c Configuration) AllDone() bool {
	return len(c.Profiles) > 0 && lo.EveryBy(c.Profiles, func(p Profile) bool { return p.Done })
}

func (c Configuration) ProfileByID(id string) (Profile, int, bool) {
	idx := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.ID == id })
	if idx < 0 {
		return Profile{}, -1, false
	}

	return c.Profiles[idx], idx, true
}

// Clone копия без общих срезов и указателей с оригиналом.
func (c Configuration) Clone() Configuration {
	clone := c
	clone.Profiles = slices.Clone(c.Profiles)

	if c.LastMenuMessageID != nil {
		id := *c.LastMenuMessageID
		clone.LastMenuMessageID = &id
	}

	return clone
}
