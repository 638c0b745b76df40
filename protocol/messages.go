package protocol

// 入站消息类型（客户端 -> 服务端）
const (
	MsgSubmitIntent = "submit_intent"
)

// 出站消息类型（服务端 -> 客户端）
const (
	MsgInitialState = "initial_state"
	MsgEnteredScene = "entered_scene"
	MsgExitedScene  = "exited_scene"
	MsgSystemNotice = "system_notice"
	MsgChatEvent    = "chat_event"
	MsgWorldUpdate  = "world_update"
	MsgIntentAck    = "intent_ack"
)

// 意图类型
const (
	IntentMove        = "move"
	IntentLook        = "look"
	IntentDrinkPotion = "drink_potion"
	IntentSay         = "say"
	IntentShout       = "shout"
	IntentBuildWall   = "build_wall"
	IntentDestroyWall = "destroy_wall"
)

// 聊天频道
const (
	ChannelSay   = "say"
	ChannelShout = "shout"
)

// Envelope 出站消息外壳
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ClientMessage 入站消息外壳
// 示例：{"type":"submit_intent","payload":{"type":"move","details":{"dx":1,"dy":0,"newFacing":">"}}}
type ClientMessage struct {
	Type    string `json:"type"`
	Payload Intent `json:"payload"`
}

// Intent 客户端意图，由服务端在下一个 Tick 中解释
type Intent struct {
	Type    string        `json:"type"`
	Details IntentDetails `json:"details"`
}

// IntentDetails 的有效字段取决于 Intent.Type
type IntentDetails struct {
	DX        int    `json:"dx,omitempty"`
	DY        int    `json:"dy,omitempty"`
	NewFacing string `json:"newFacing,omitempty"`
	NewChar   string `json:"newChar,omitempty"` // 旧客户端字段名
	Message   string `json:"message,omitempty"`
}

// Facing 返回请求的朝向符号，兼容 newChar
func (d IntentDetails) Facing() string {
	if d.NewFacing != "" {
		return d.NewFacing
	}
	return d.NewChar
}

// PlayerPublic 对其他客户端可见的玩家字段
type PlayerPublic struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Char   string `json:"char"`
	SceneX int    `json:"scene_x"`
	SceneY int    `json:"scene_y"`
	IsWet  bool   `json:"is_wet"`
}

// PlayerPrivate 仅发送给玩家本人的完整字段
type PlayerPrivate struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SceneX        int    `json:"scene_x"`
	SceneY        int    `json:"scene_y"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Char          string `json:"char"`
	MaxHealth     int    `json:"max_health"`
	CurrentHealth int    `json:"current_health"`
	MaxMana       int    `json:"max_mana"`
	CurrentMana   int    `json:"current_mana"`
	Potions       int    `json:"potions"`
	Gold          int    `json:"gold"`
	Walls         int    `json:"walls"`
	IsWet         bool   `json:"is_wet"`
}

// NPCPublic 非玩家角色（如法力精灵）的可见字段
type NPCPublic struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Char   string `json:"char"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	SceneX int    `json:"scene_x"`
	SceneY int    `json:"scene_y"`
}

// PlayerExited 离开场景事件
type PlayerExited struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SystemNotice 文案键 + 占位符 + 兜底文本 + 严重级别
type SystemNotice struct {
	MessageKey   string         `json:"messageKey"`
	Placeholders map[string]any `json:"placeholders,omitempty"`
	Message      string         `json:"message"`
	Severity     string         `json:"severity"`
}

// ChatEvent say / shout 聊天
type ChatEvent struct {
	SenderID    string `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	Message     string `json:"message"`
	Channel     string `json:"channel"`
	SceneCoords string `json:"scene_coords"`
}

// Tile 场景内的格子坐标
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Terrain 场景内非地板格子
type Terrain struct {
	Walls []Tile `json:"walls"`
	Water []Tile `json:"water"`
}

// WorldUpdate 每个 Tick 发给单个玩家的快照
type WorldUpdate struct {
	Tick          uint64         `json:"tick"`
	Self          PlayerPrivate  `json:"self_player_data"`
	VisibleOthers []PlayerPublic `json:"visible_other_players"`
	VisibleNPCs   []NPCPublic    `json:"visible_npcs"`
	Terrain       Terrain        `json:"visible_terrain"`
}

// InitialState 连接建立时发给新玩家
type InitialState struct {
	Player        PlayerPrivate  `json:"player_data"`
	Others        []PlayerPublic `json:"other_players_in_scene"`
	NPCs          []NPCPublic    `json:"visible_npcs"`
	Terrain       Terrain        `json:"visible_terrain"`
	GridWidth     int            `json:"grid_width"`
	GridHeight    int            `json:"grid_height"`
	TickRate      float64        `json:"tick_rate"` // 秒
	RainIntensity float64        `json:"default_rain_intensity"`
}

// IntentAck 对 submit_intent 的回执，只说明是否入队
type IntentAck struct {
	Success      bool           `json:"success"`
	MessageKey   string         `json:"messageKey"`
	Placeholders map[string]any `json:"placeholders,omitempty"`
	Message      string         `json:"message"`
}
