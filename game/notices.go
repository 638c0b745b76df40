package game

import (
	"fmt"
	"strings"

	"wandworld/protocol"
)

// 通知严重级别，客户端据此着色
const (
	SeveritySystem  = "system"
	SeverityGood    = "event-good"
	SeverityBad     = "event-bad"
	SeverityWelcome = "welcome-message"
	SeveritySensory = "sensory-" // 后接感官类别
)

// 文案键，客户端按键选择本地化文本，Message 为兜底
const (
	KeyWelcome            = "LORE.WELCOME_INITIAL"
	KeyTransitionWest     = "LORE.SCENE_TRANSITION_WEST"
	KeyTransitionEast     = "LORE.SCENE_TRANSITION_EAST"
	KeyTransitionNorth    = "LORE.SCENE_TRANSITION_NORTH"
	KeyTransitionSouth    = "LORE.SCENE_TRANSITION_SOUTH"
	KeyPotionSuccess      = "LORE.POTION_DRINK_SUCCESS"
	KeyPotionEmpty        = "LORE.POTION_DRINK_FAIL_EMPTY"
	KeyShoutBoom          = "LORE.VOICE_BOOM_SHOUT"
	KeyShoutNoMana        = "LORE.LACK_MANA_SHOUT"
	KeyBlockedWall        = "LORE.ACTION_BLOCKED_WALL"
	KeyBuildOutOfBounds   = "LORE.BUILD_FAIL_OUT_OF_BOUNDS"
	KeyBuildObstructed    = "LORE.BUILD_FAIL_OBSTRUCTED"
	KeyBuildNoMaterials   = "LORE.BUILD_FAIL_NO_MATERIALS"
	KeyBuildSuccess       = "LORE.BUILD_SUCCESS"
	KeyDestroyOutOfBounds = "LORE.DESTROY_FAIL_OUT_OF_BOUNDS"
	KeyDestroyNoWall      = "LORE.DESTROY_FAIL_NO_WALL"
	KeyDestroyNoMana      = "LORE.DESTROY_FAIL_NO_MANA"
	KeyDestroySuccess     = "LORE.DESTROY_SUCCESS"
	KeyBecameWetWater     = "LORE.BECAME_WET_WATER"
	KeyBecameWetRain      = "LORE.BECAME_WET_RAIN"
	KeyBecameDry          = "LORE.BECAME_DRY"
	KeyPixieMovedAway     = "LORE.PIXIE_MOVED_AWAY"
	KeyPixieBlockedPath   = "LORE.PIXIE_BLOCKED_PATH"
	KeyPixieManaBoost     = "LORE.PIXIE_MANA_BOOST"

	KeyPixieShimmer = "SENSORY.PIXIE_SIGHT_SHIMMER"
	KeyPixieDart    = "SENSORY.PIXIE_SIGHT_DART"
	KeyPixieChime   = "SENSORY.PIXIE_SOUND_CHIME"
	KeyPixieWings   = "SENSORY.PIXIE_SOUND_WINGS"
	KeyPixieOzone   = "SENSORY.PIXIE_SMELL_OZONE"
	KeyPixieAura    = "SENSORY.PIXIE_MAGIC_AURA"

	KeyActionQueued   = "ACTION_SENT_FEEDBACK.ACTION_QUEUED"
	KeyUnknownCommand = "ACTION_SENT_FEEDBACK.ACTION_FAILED_UNKNOWN_COMMAND"
	KeyPlayerUnknown  = "ACTION_SENT_FEEDBACK.PLAYER_NOT_RECOGNIZED"
)

var fallbackTexts = map[string]string{
	KeyWelcome:            "Welcome, wizard. The Tome awaits your will.",
	KeyTransitionWest:     "You emerge on the western edge of a new area ({scene_x},{scene_y}).",
	KeyTransitionEast:     "You emerge on the eastern edge of a new area ({scene_x},{scene_y}).",
	KeyTransitionNorth:    "You emerge on the northern edge of a new area ({scene_x},{scene_y}).",
	KeyTransitionSouth:    "You emerge on the southern edge of a new area ({scene_x},{scene_y}).",
	KeyPotionSuccess:      "You drink a potion, feeling invigorated!",
	KeyPotionEmpty:        "Your satchel is empty of potions.",
	KeyShoutBoom:          "Your voice booms, costing {manaCost} mana!",
	KeyShoutNoMana:        "You need {manaCost} mana to shout.",
	KeyBlockedWall:        "A wall blocks your way.",
	KeyBuildOutOfBounds:   "You cannot build beyond the edge of this area.",
	KeyBuildObstructed:    "Something already occupies that spot.",
	KeyBuildNoMaterials:   "You have no wall materials left.",
	KeyBuildSuccess:       "You raise a wall. Materials left: {walls}.",
	KeyDestroyOutOfBounds: "There is nothing to destroy beyond the edge of this area.",
	KeyDestroyNoWall:      "There is no wall there.",
	KeyDestroyNoMana:      "You need {manaCost} mana to unmake a wall.",
	KeyDestroySuccess:     "The wall crumbles for {manaCost} mana. Materials: {walls}.",
	KeyBecameWetWater:     "You splash into the water and are soaked.",
	KeyBecameWetRain:      "The rain soaks you to the bone.",
	KeyBecameDry:          "You feel dry again.",
	KeyPixieMovedAway:     "{pixieName} flits out of your way.",
	KeyPixieBlockedPath:   "{pixieName} hovers stubbornly in your path.",
	KeyPixieManaBoost:     "A nearby pixie hums. You gain {amount} mana.",
	KeyPixieShimmer:       "You catch a shimmer of light. It is {npcName}.",
	KeyPixieDart:          "{npcName} darts through the air.",
	KeyPixieChime:         "A faint chime rings {direction}.",
	KeyPixieWings:         "You hear tiny wings buzzing {direction}.",
	KeyPixieOzone:         "You smell ozone {direction}.",
	KeyPixieAura:          "You sense a tingle of magic {direction}.",
	KeyActionQueued:       "Your will has been noted.",
	KeyUnknownCommand:     "The command \"{actionWord}\" is not recognized.",
	KeyPlayerUnknown:      "Player not recognized.",
}

var transitionKeys = map[Direction]string{
	DirWest:  KeyTransitionWest,
	DirEast:  KeyTransitionEast,
	DirNorth: KeyTransitionNorth,
	DirSouth: KeyTransitionSouth,
}

// renderText 用占位符填充兜底文本；未知键原样返回键名
func renderText(key string, placeholders map[string]any) string {
	text, ok := fallbackTexts[key]
	if !ok {
		return key
	}
	for k, v := range placeholders {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprint(v))
	}
	return text
}

func newNotice(key, severity string, placeholders map[string]any) protocol.SystemNotice {
	return protocol.SystemNotice{
		MessageKey:   key,
		Placeholders: placeholders,
		Message:      renderText(key, placeholders),
		Severity:     severity,
	}
}

func newAck(success bool, key string, placeholders map[string]any) protocol.IntentAck {
	return protocol.IntentAck{
		Success:      success,
		MessageKey:   key,
		Placeholders: placeholders,
		Message:      renderText(key, placeholders),
	}
}
