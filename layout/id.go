package layout

// ID names a logical field of an effect record independently of where the
// active layout version stores it.
type ID uint8

const (
	Invalid ID = iota

	// Record framing
	Signature
	Version
	Opcode
	Target
	Power

	// Stage 1: parameter pair
	Param1
	Param2
	Param1High // upper 16 bits of param1 when a definition splits the slot
	Param2High // upper 16 bits of param2 when a definition splits the slot

	// Stage 2: common block 1
	Timing
	Resist
	Duration
	Probability1
	Probability2

	// Stage 3: resource/tail
	Resource

	// Stage 4: common block 2
	DiceCount
	DiceSize
	SaveType
	SaveBonus

	// Stage 5: special
	Special

	// Extended-only trailer
	School
	Unknown48
	MinLevel
	MaxLevel
	Param3
	Param4
	Param5
	TimeApplied
	Resource2
	Resource3
	CasterX
	CasterY
	TargetX
	TargetY
	ParentType
	ParentResource
	ParentFlags
	Projectile
	ParentSlot
	VariableName
	CasterLevel
	FirstApply
	SecondaryType
	Padding

	numIDs
)

var idNames = [...]string{
	Invalid:        "invalid",
	Signature:      "Signature",
	Version:        "Version",
	Opcode:         "Type",
	Target:         "Target",
	Power:          "Power",
	Param1:         "Parameter 1",
	Param2:         "Parameter 2",
	Param1High:     "Parameter 1 (high)",
	Param2High:     "Parameter 2 (high)",
	Timing:         "Timing mode",
	Resist:         "Dispel/Resistance",
	Duration:       "Duration",
	Probability1:   "Probability 1",
	Probability2:   "Probability 2",
	Resource:       "Resource",
	DiceCount:      "# dice thrown",
	DiceSize:       "Dice size",
	SaveType:       "Save type",
	SaveBonus:      "Save bonus",
	Special:        "Special",
	School:         "Primary type (school)",
	Unknown48:      "Unknown",
	MinLevel:       "Minimum level",
	MaxLevel:       "Maximum level",
	Param3:         "Parameter 3",
	Param4:         "Parameter 4",
	Param5:         "Parameter 5",
	TimeApplied:    "Time applied (ticks)",
	Resource2:      "Resource 2",
	Resource3:      "Resource 3",
	CasterX:        "Caster location: X",
	CasterY:        "Caster location: Y",
	TargetX:        "Target location: X",
	TargetY:        "Target location: Y",
	ParentType:     "Resource type",
	ParentResource: "Parent resource",
	ParentFlags:    "Resource flags",
	Projectile:     "Impact projectile",
	ParentSlot:     "Source item slot",
	VariableName:   "Variable name",
	CasterLevel:    "Caster level",
	FirstApply:     "First apply",
	SecondaryType:  "Secondary type",
	Padding:        "Unused",
}

// String returns the default display name of the logical field.
func (id ID) String() string {
	if int(id) < len(idNames) {
		return idNames[id]
	}
	return "invalid"
}

var idKeys = map[string]ID{
	"signature":      Signature,
	"version":        Version,
	"opcode":         Opcode,
	"target":         Target,
	"power":          Power,
	"param1":         Param1,
	"param2":         Param2,
	"param1high":     Param1High,
	"param2high":     Param2High,
	"timing":         Timing,
	"resist":         Resist,
	"duration":       Duration,
	"probability1":   Probability1,
	"probability2":   Probability2,
	"resource":       Resource,
	"dicecount":      DiceCount,
	"dicesize":       DiceSize,
	"savetype":       SaveType,
	"savebonus":      SaveBonus,
	"special":        Special,
	"school":         School,
	"unknown48":      Unknown48,
	"minlevel":       MinLevel,
	"maxlevel":       MaxLevel,
	"param3":         Param3,
	"param4":         Param4,
	"param5":         Param5,
	"timeapplied":    TimeApplied,
	"resource2":      Resource2,
	"resource3":      Resource3,
	"casterx":        CasterX,
	"castery":        CasterY,
	"targetx":        TargetX,
	"targety":        TargetY,
	"parenttype":     ParentType,
	"parentresource": ParentResource,
	"parentflags":    ParentFlags,
	"projectile":     Projectile,
	"parentslot":     ParentSlot,
	"variablename":   VariableName,
	"casterlevel":    CasterLevel,
	"firstapply":     FirstApply,
	"secondarytype":  SecondaryType,
	"padding":        Padding,
}

var keysByID [numIDs]string

func init() {
	for k, id := range idKeys {
		keysByID[id] = k
	}
}

// Key returns the lower-case identifier used by the opcode tables and the CLI.
func (id ID) Key() string {
	if id < numIDs {
		return keysByID[id]
	}
	return ""
}

// ParseID maps a table/CLI key such as "param2" or "casterlevel" to its ID.
func ParseID(key string) (ID, bool) {
	id, ok := idKeys[key]
	return id, ok
}

// parent returns the slot a sub-slot ID lives in and its byte delta.
func (id ID) parent() (ID, int, bool) {
	switch id {
	case Param1High:
		return Param1, 2, true
	case Param2High:
		return Param2, 2, true
	}
	return Invalid, 0, false
}
