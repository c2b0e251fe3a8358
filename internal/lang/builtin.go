package lang

import "fmt"

// classifierDef is a declaration of a built-in classifier.
type classifierDef struct {
	name string
	expr string
}

type profileDef struct {
	code       string
	syllables  SyllableCounter
	words      []classifierDef
	beginnings []classifierDef
}

// Word-usage patterns count every match; beginning patterns are anchored
// with ^ and no multi-line flag, so over a whole document they match at most
// once, at the start of the text.
//
// regexp's \b and \w are ASCII-only, so the nominalization patterns spell
// the Unicode word class out. Leftmost matching starts them at a word start.
var builtinProfiles = []profileDef{
	{
		code:      "en",
		syllables: EnglishSyllables,
		words: []classifierDef{
			{"tobeverb", `(?i)\b(be|being|was|were|been|are|is)\b`},
			{"auxverb", `(?i)\b(will|shall|cannot|may|need|would|should|could|might|must|ought|can)\b`},
			{"conjunction", `(?i)\b(and|but|or|yet|nor)\b`},
			{"pronoun", `(?i)\b(no-one|noone|anybody|anyone|anything|everybody|everyone|everything|nobody|nothing|somebody|someone|something|i|you|he|she|it|we|they|me|him|her|us|them|my|mine|your|yours|his|hers|its|our|ours|their|theirs|myself|yourself|himself|herself|itself|ourselves|yourselves|themselves)\b`},
			{"preposition", `(?i)\b(aboard|about|above|across|after|against|along|amid|among|anti|around|as|at|before|behind|below|beneath|beside|besides|between|beyond|but|by|concerning|considering|despite|down|during|except|excepting|excluding|following|for|from|in|inside|into|like|minus|near|of|off|on|onto|opposite|outside|over|past|per|plus|regarding|round|save|since|than|through|to|toward|towards|under|underneath|unlike|until|up|upon|versus|via|with|within|without)\b`},
			{"nominalization", `(?i)[\p{L}\p{N}_]{3,}(?:tion|ment|ence|ance)s?(?:$|[^\p{L}\p{N}_])`},
		},
		beginnings: []classifierDef{
			{"begin_pronoun", `(?i)^(i|you|he|she|it|we|they)\b`},
			{"begin_interrogative", `(?i)^(why|who|what|whom|when|where|how)\b`},
			{"begin_article", `(?i)^(the|a|an)\b`},
			{"begin_subordination", `(?i)^(after|although|as|because|before|even|if|in order|once|provided|rather|since|so|than|that|though|till|unless|until|when|whenever|where|whereas|wherever|whether|while|why)\b`},
			{"begin_conjunction", `(?i)^(and|but|or|yet|nor)\b`},
			{"begin_preposition", `(?i)^(aboard|about|above|across|after|against|along|amid|among|anti|around|as|at|before|behind|below|beneath|beside|besides|between|beyond|but|by|concerning|considering|despite|down|during|except|excepting|excluding|following|for|from|in|inside|into|like|minus|near|of|off|on|onto|opposite|outside|over|past|per|plus|regarding|round|save|since|than|through|to|toward|towards|under|underneath|unlike|until|up|upon|versus|via|with|within|without)\b`},
		},
	},
	{
		code:      "de",
		syllables: VowelGroups("aeiouyäöü"),
		words: []classifierDef{
			{"tobeverb", `(?i)\b(sein|bin|bist|ist|sind|seid|war|warst|waren|wart|gewesen)\b`},
			{"auxverb", `(?i)\b(haben|habe|hast|hat|habt|hatte|hatten|werden|werde|wirst|wird|werdet|wurde|wurden|können|kann|kannst|konnte|konnten|müssen|muss|musst|musste|mussten|sollen|soll|sollst|sollte|sollten|wollen|will|willst|wollte|wollten|dürfen|darf|darfst|durfte|mögen|mag|möchte)\b`},
			{"conjunction", `(?i)\b(und|aber|oder|denn|sondern|doch)\b`},
			{"pronoun", `(?i)\b(ich|du|er|sie|es|wir|ihr|mich|dich|sich|uns|euch|mir|dir|ihm|ihnen|mein|dein|sein|unser|euer|man|jemand|niemand|etwas|nichts)\b`},
			{"preposition", `(?i)(?:\b(?:an|auf|aus|bei|durch|für|gegen|hinter|in|mit|nach|neben|ohne|seit|um|unter|von|vor|zu|zwischen|während|wegen|trotz)|(?:^|[^\p{L}\p{N}_])über)\b`},
			{"nominalization", `(?i)[\p{L}\p{N}_]{3,}(?:ung|heit|keit|schaft|tion)(?:en)?(?:$|[^\p{L}\p{N}_])`},
		},
		beginnings: []classifierDef{
			{"begin_pronoun", `(?i)^(ich|du|er|sie|es|wir|ihr)\b`},
			{"begin_interrogative", `(?i)^(warum|wer|was|wann|wo|wie|welche|welcher|welches)\b`},
			{"begin_article", `(?i)^(der|die|das|ein|eine|einen|einem|einer|eines|den|dem|des)\b`},
			{"begin_subordination", `(?i)^(als|bevor|bis|da|damit|dass|nachdem|ob|obwohl|seit|sobald|sodass|während|weil|wenn)\b`},
			{"begin_conjunction", `(?i)^(und|aber|oder|denn|sondern|doch)\b`},
			{"begin_preposition", `(?i)^(an|auf|aus|bei|durch|für|gegen|hinter|in|mit|nach|neben|ohne|seit|über|um|unter|von|vor|zu|zwischen)\b`},
		},
	},
	{
		code:      "nl",
		syllables: VowelGroups("aeiouyáéíóúàèëïöü"),
		words: []classifierDef{
			{"tobeverb", `(?i)\b(zijn|ben|bent|is|was|waren|geweest)\b`},
			{"auxverb", `(?i)\b(hebben|heb|hebt|heeft|had|hadden|worden|word|wordt|werd|werden|kunnen|kan|kunt|kon|konden|moeten|moet|moest|moesten|zullen|zal|zult|zou|zouden|willen|wil|wilt|wilde|wilden|mogen|mag|mocht|mochten)\b`},
			{"conjunction", `(?i)\b(en|maar|of|want|dus|noch)\b`},
			{"pronoun", `(?i)\b(ik|jij|je|u|hij|zij|ze|wij|we|jullie|mij|me|jou|hem|haar|ons|hen|hun|mijn|jouw|uw|onze|iemand|niemand|iets|niets)\b`},
			{"preposition", `(?i)\b(aan|achter|bij|binnen|boven|buiten|door|in|langs|met|na|naar|naast|om|onder|op|over|per|rond|sinds|tegen|tijdens|tot|tussen|uit|van|voor|zonder)\b`},
			{"nominalization", `(?i)[\p{L}\p{N}_]{3,}(?:tie|ties|heid|heden|ing|ingen|schap)(?:$|[^\p{L}\p{N}_])`},
		},
		beginnings: []classifierDef{
			{"begin_pronoun", `(?i)^(ik|jij|je|u|hij|zij|ze|wij|we|jullie)\b`},
			{"begin_interrogative", `(?i)^(waarom|wie|wat|wanneer|waar|hoe|welke|welk)\b`},
			{"begin_article", `(?i)^(de|het|een)\b`},
			{"begin_subordination", `(?i)^(als|omdat|hoewel|terwijl|nadat|voordat|zodat|toen|indien|doordat|zodra)\b`},
			{"begin_conjunction", `(?i)^(en|maar|of|want|dus)\b`},
			{"begin_preposition", `(?i)^(aan|achter|bij|binnen|boven|buiten|door|in|langs|met|na|naar|naast|om|onder|op|over|per|rond|sinds|tegen|tijdens|tot|tussen|uit|van|voor|zonder)\b`},
		},
	},
}

// Builtin builds the profile registered under code, or reports
// ErrUnknownLanguage.
func Builtin(code string) (*Profile, error) {
	for _, def := range builtinProfiles {
		if def.code == code {
			return def.build()
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownLanguage, code)
}

// Default builds a registry with every built-in profile. It is meant to be
// called once at start-up; the result is immutable and safe to share.
func Default() *Registry {
	profiles := make([]*Profile, 0, len(builtinProfiles))
	for _, def := range builtinProfiles {
		p, err := def.build()
		if err != nil {
			panic(err)
		}
		profiles = append(profiles, p)
	}
	reg, err := NewRegistry(profiles...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (d profileDef) build() (*Profile, error) {
	words, err := compileAll(d.words)
	if err != nil {
		return nil, err
	}
	beginnings, err := compileAll(d.beginnings)
	if err != nil {
		return nil, err
	}
	return NewProfile(d.code, d.syllables, words, beginnings)
}

func compileAll(defs []classifierDef) ([]Classifier, error) {
	out := make([]Classifier, 0, len(defs))
	for _, def := range defs {
		p, err := NewPattern(def.name, def.expr)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
