package back

import (
	"fmt"
	"time"

	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a registered club member that can appear in Match and
// TournamentPlacement records. Only the name and avatar can change
// after registration.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	AvatarURL null.String
}

func NewPlayer(name string) Player {
	return Player{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":        p.ID,
		"CreatedAt": p.CreatedAt,
		"Name":      p.Name,
		"AvatarURL": p.AvatarURL,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) Update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":      p.Name,
		"AvatarURL": p.AvatarURL,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (b *Back) UpdatePlayer(p Player) error {
	return b.transaction(p.Update)
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		return Player{}, err
	}

	return ret, nil
}

// getPlayers returns every registered player, newest first.
func getPlayers(tx *sqlx.Tx) ([]Player, error) {
	var ret []Player
	if err := tx.Select(&ret, `SELECT * FROM Player ORDER BY CreatedAt DESC`); err != nil {
		return nil, err
	}

	return ret, nil
}

func (b *Back) RegisterPlayer(name string) (player Player, _ error) {
	if len(name) < 2 || len(name) > 32 {
		return Player{}, util.ErrPublic("player name must be between 2 and 32 characters")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByName(tx, name); err == nil {
			return util.ErrPublic(fmt.Sprintf("the name `%s` is taken already", name))
		}

		player = NewPlayer(name)
		return player.insert(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func (b *Back) GetPlayerByName(name string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByName(tx, name)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}
