// Package menu holds the menu tables, the stage allow-lists and the pure
// rendering and input resolution rules of the navigation engine.
package menu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWiring marks a programming error in the menu or handler tables.
	ErrWiring = errors.New("wiring error")
	// ErrUnknownAction is returned for an action no menu knows about.
	ErrUnknownAction = errors.New("unknown action")
)

// ID identifies a menu.
type ID string

const (
	Log     ID = "LOG"
	Main    ID = "MAIN"
	Profile ID = "PROFILE"
	AI      ID = "AI"
	Source  ID = "SOURCE"
)

// Stage is the derived progress of the session.
type Stage string

const (
	StageNoProfile  Stage = "NO_PROFILE"
	StageNoAI       Stage = "NO_AI"
	StageNoNote     Stage = "NO_NOTE"
	StageNoCards    Stage = "NO_CARDS"
	StageCardsReady Stage = "CARDS_READY"
)

// Action identifies a user-selectable operation.
type Action string

const (
	ActionLogin         Action = "login"
	ActionNewUser       Action = "new_user"
	ActionRemoveUser    Action = "remove_user"
	ActionExit          Action = "exit"
	ActionLogout        Action = "logout"
	ActionProfileMenu   Action = "profile_menu"
	ActionAIMenu        Action = "ai_menu"
	ActionSourceMenu    Action = "source_menu"
	ActionMainMenu      Action = "main_menu"
	ActionNewProfile    Action = "new_profile"
	ActionSelectProfile Action = "select_profile"
	ActionEditProfile   Action = "edit_profile"
	ActionSetupOpenAI   Action = "setup_openai"
	ActionSetupGemini   Action = "setup_gemini"
	ActionSelectAI      Action = "select_ai"
	ActionSourceFile    Action = "source_file"
	ActionSourceNotion  Action = "source_notion"
	ActionGenerateCards Action = "generate_cards"
	ActionWorkWithCards Action = "work_with_cards"
	ActionExportCards   Action = "export_cards"
)

// Item is a single menu entry.
type Item struct {
	Action Action
	Label  string
}

var menus = map[ID][]Item{
	Log: {
		{ActionLogin, "1. Login"},
		{ActionNewUser, "2. Add user"},
		{ActionRemoveUser, "3. Remove user"},
		{ActionExit, "0. Quit program"},
	},
	Main: {
		{ActionProfileMenu, "1. Manage profiles"},
		{ActionAIMenu, "2. Configure AI"},
		{ActionSourceMenu, "3. Select source note"},
		{ActionGenerateCards, "4. Generate flashcards"},
		{ActionWorkWithCards, "5. Work with flashcards"},
		{ActionExportCards, "6. Export flashcards"},
		{ActionLogout, "9. Logout"},
		{ActionExit, "0. Quit program"},
	},
	Profile: {
		{ActionNewProfile, "1. Add new profile"},
		{ActionSelectProfile, "2. Select profile"},
		{ActionEditProfile, "3. Edit profile"},
		{ActionMainMenu, "8. Back to main menu"},
		{ActionLogout, "9. Logout"},
		{ActionExit, "0. Quit program"},
	},
	AI: {
		{ActionSetupOpenAI, "1. Setup OpenAI"},
		{ActionSetupGemini, "2. Setup Gemini"},
		{ActionSelectAI, "3. Select AI"},
		{ActionMainMenu, "8. Back to main menu"},
		{ActionLogout, "9. Logout"},
		{ActionExit, "0. Quit program"},
	},
	Source: {
		{ActionSourceFile, "1. Select the note from file (.txt)"},
		{ActionSourceNotion, "2. Select Notion note (coming soon)"},
		{ActionMainMenu, "8. Back to main menu"},
		{ActionLogout, "9. Logout"},
		{ActionExit, "0. Quit program"},
	},
}

var stages = map[Stage][]Action{
	StageNoProfile: {ActionProfileMenu, ActionLogout, ActionExit},
	StageNoAI:      {ActionProfileMenu, ActionAIMenu, ActionLogout, ActionExit},
	StageNoNote:    {ActionProfileMenu, ActionAIMenu, ActionSourceMenu, ActionLogout, ActionExit},
	StageNoCards: {
		ActionProfileMenu, ActionAIMenu, ActionSourceMenu, ActionGenerateCards,
		ActionLogout, ActionExit,
	},
	StageCardsReady: {
		ActionProfileMenu, ActionAIMenu, ActionSourceMenu, ActionGenerateCards,
		ActionWorkWithCards, ActionExportCards, ActionLogout, ActionExit,
	},
}

// IDs returns every menu identifier.
func IDs() []ID {
	return []ID{Log, Main, Profile, AI, Source}
}

// Items returns the entries of menu id in declaration order.
func Items(id ID) ([]Item, error) {
	items, ok := menus[id]
	if !ok {
		return nil, fmt.Errorf("menu %q not found: %w", id, ErrWiring)
	}
	return append([]Item(nil), items...), nil
}

// Referenced reports whether any menu lists the action.
func Referenced(a Action) bool {
	for _, items := range menus {
		for _, it := range items {
			if it.Action == a {
				return true
			}
		}
	}
	return false
}

// Actions returns every action listed by at least one menu.
func Actions() []Action {
	seen := make(map[Action]bool)
	var out []Action
	for _, id := range IDs() {
		for _, it := range menus[id] {
			if !seen[it.Action] {
				seen[it.Action] = true
				out = append(out, it.Action)
			}
		}
	}
	return out
}

// Render returns the labels shown for menu id at stage. When the whole
// stage allow-list is present in the menu, exactly the allowed labels are
// returned in allow-list order; otherwise every label of the menu in
// declaration order.
func Render(id ID, stage Stage) ([]string, error) {
	items, ok := menus[id]
	if !ok {
		return nil, fmt.Errorf("menu %q not found: %w", id, ErrWiring)
	}
	allowed, ok := stages[stage]
	if !ok {
		return nil, fmt.Errorf("stage %q not found: %w", stage, ErrWiring)
	}

	labels := make(map[Action]string, len(items))
	for _, it := range items {
		labels[it.Action] = it.Label
	}

	filtered := make([]string, 0, len(allowed))
	for _, a := range allowed {
		label, ok := labels[a]
		if !ok {
			filtered = nil
			break
		}
		filtered = append(filtered, label)
	}
	if filtered != nil {
		return filtered, nil
	}

	all := make([]string, 0, len(items))
	for _, it := range items {
		all = append(all, it.Label)
	}
	return all, nil
}

// ResolveInput maps raw input to the action of the first rendered label it
// is a prefix of. Blank or unmatched input yields false.
func ResolveInput(raw string, rendered []string, id ID) (Action, bool) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", false
	}
	for _, label := range rendered {
		if !strings.HasPrefix(label, input) {
			continue
		}
		for _, it := range menus[id] {
			if it.Label == label {
				return it.Action, true
			}
		}
	}
	return "", false
}
