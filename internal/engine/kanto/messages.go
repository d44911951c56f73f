package kanto

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pokearena/battle-api/internal/entities"
)

var titleCaser = cases.Title(language.English)

// displayName title-cases a catalog name ("x-attack" -> "X-Attack",
// "charmander" -> "Charmander") for user-facing messages.
func displayName(name string) string {
	return titleCaser.String(name)
}

func attackMessage(username string, result AttackResult) string {
	parts := []string{fmt.Sprintf("%s attacks!", username)}

	if result.Critical {
		parts = append(parts, "Critical hit!")
	}
	if result.SuperEffective {
		parts = append(parts, "It's super effective!")
	} else if result.NotEffective {
		parts = append(parts, "It's not very effective...")
	}

	parts = append(parts, fmt.Sprintf("Dealt %d damage.", result.Damage))

	return strings.Join(parts, " ")
}

func defendMessage(username string) string {
	return fmt.Sprintf("%s chose to defend!", username)
}

func potionMessage(restored int32) string {
	return fmt.Sprintf("Used %s! Restored %d HP.", displayName(string(entities.ItemPotion)), restored)
}

func attackBoostMessage(turns uint32) string {
	return fmt.Sprintf("Used %s! Attack boosted by 50%% for %d turns.", displayName(string(entities.ItemXAttack)), turns)
}

func defenseBoostMessage(turns uint32) string {
	return fmt.Sprintf("Used %s! Incoming damage halved for %d turns.", displayName(string(entities.ItemXDefense)), turns)
}

func victoryMessage(username string, pokemonName string) string {
	return fmt.Sprintf("%s fainted! %s wins!", displayName(pokemonName), username)
}
