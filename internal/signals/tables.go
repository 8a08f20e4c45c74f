package signals

import "github.com/Milo-adonos/SilentView/internal/contexts"

// Preview templates use %[1]s for the handle and %[2]s for the
// prediction-dependent detail sentence.
type narrative struct {
	Title   string
	Preview string
	High    string
	Normal  string
}

type answerTable struct {
	byAnswer map[string]narrative
	fallback narrative
}

func (t answerTable) pick(answer string) narrative {
	if n, ok := t.byAnswer[answer]; ok {
		return n
	}
	return t.fallback
}

// Signal 1 never frames the result negatively, whatever the answer.
var intuitionTables = map[contexts.Type]answerTable{
	contexts.ExCrush: {
		byAnswer: map[string]narrative{
			"Oui je pense": {
				Title:   "Ton intuition était correcte",
				Preview: "Comme tu le soupçonnais, @%[1]s consulte régulièrement ton profil. %[2]s Ton instinct ne te trompait pas.",
				High:    "L'intensité des visites correspond exactement à ce que tu imaginais.",
				Normal:  "Les données confirment tes impressions.",
			},
			"J'ai des doutes": {
				Title:   "Tes doutes se confirment",
				Preview: "Tes doutes étaient fondés. @%[1]s garde bien un œil sur ton activité. %[2]s",
				High:    "Et c'est plus fréquent que tu ne le pensais.",
				Normal:  "Les signaux sont clairs.",
			},
		},
		fallback: narrative{
			Title:   "Activité suspecte détectée",
			Preview: "@%[1]s montre un intérêt pour ton profil. %[2]s",
			High:    "La fréquence est notable.",
			Normal:  "Les patterns sont significatifs.",
		},
	},
	contexts.Friend: {
		byAnswer: map[string]narrative{
			"Oui clairement": {
				Title:   "Tu avais remarqué juste",
				Preview: "Tu avais raison, @%[1]s a bien changé son comportement envers toi. %[2]s Tu n'as pas rêvé.",
				High:    "L'évolution est significative.",
				Normal:  "Les données le confirment.",
			},
			"Peut-être": {
				Title:   "Ton ressenti se confirme",
				Preview: "Ton intuition était bonne. @%[1]s montre effectivement un comportement différent. %[2]s",
				High:    "Plus marqué que tu ne le pensais.",
				Normal:  "Les signaux sont présents.",
			},
		},
		fallback: narrative{
			Title:   "Changement détecté",
			Preview: "@%[1]s présente un changement de comportement sur ton profil. %[2]s",
			High:    "C'est notable.",
			Normal:  "Les patterns le montrent.",
		},
	},
	contexts.Business: {
		byAnswer: map[string]narrative{
			"Concurrent": {
				Title:   "Veille concurrentielle confirmée",
				Preview: "@%[1]s surveille bien ton activité professionnelle. %[2]s Tu avais raison de te poser la question.",
				High:    "La veille est sérieuse et structurée.",
				Normal:  "Le suivi est régulier.",
			},
			"Client potentiel": {
				Title:   "Intérêt commercial validé",
				Preview: "@%[1]s montre un réel intérêt pour ton offre. %[2]s",
				High:    "Les signaux d'intention d'achat sont présents.",
				Normal:  "La phase de découverte est active.",
			},
			"Influenceur": {
				Title:   "Attention médiatique détectée",
				Preview: "@%[1]s suit ton contenu attentivement. %[2]s",
				High:    "L'attention est supérieure à la moyenne.",
				Normal:  "L'intérêt est marqué.",
			},
		},
		fallback: narrative{
			Title:   "Surveillance active confirmée",
			Preview: "@%[1]s suit ton contenu attentivement. %[2]s",
			High:    "L'attention est supérieure à la moyenne.",
			Normal:  "L'intérêt est marqué.",
		},
	},
	contexts.Curiosity: {
		byAnswer: map[string]narrative{
			"Oui bien": {
				Title:   "Cette connaissance te surveille bien",
				Preview: "@%[1]s que tu connais garde effectivement un œil sur toi. %[2]s Ton intuition était bonne.",
				High:    "L'intérêt est plus profond que tu ne le pensais.",
				Normal:  "Les signaux sont clairs.",
			},
			"Vaguement": {
				Title:   "Plus qu'une simple curiosité",
				Preview: "@%[1]s s'intéresse à toi plus que prévu. %[2]s",
				High:    "Même en le connaissant peu, cette personne te suit de près.",
				Normal:  "L'attention est réelle.",
			},
		},
		fallback: narrative{
			Title:   "Intérêt caché confirmé",
			Preview: "@%[1]s visite ton profil régulièrement. %[2]s",
			High:    "L'intérêt est marqué même sans vous connaître.",
			Normal:  "La curiosité est persistante.",
		},
	},
}

// Frequency previews: %[1]s level, %[2]s handle, %[3]s description,
// %[4]s prediction-dependent detail.
type frequencyText struct {
	Title   string
	Preview string
	// detail per bucket: low, medium, high
	Detail [3]string
}

var frequencyLevels = [3]string{"régulière", "modérée", "élevée"}

var frequencyDescriptions = [3]string{
	"notable et constante",
	"au-dessus de la normale",
	"bien supérieure à la moyenne",
}

var frequencyTexts = map[contexts.Type]frequencyText{
	contexts.ExCrush: {
		Title:   "Fréquence d'observation",
		Preview: "%[1]s - @%[2]s consulte ton profil avec une fréquence %[3]s. %[4]s Ce niveau d'attention révèle un attachement persistant.",
		Detail: [3]string{
			"Pattern de visites stable.",
			"Visites régulières identifiées.",
			"Plusieurs passages détectés par semaine.",
		},
	},
	contexts.Friend: {
		Title:   "Fréquence de visite",
		Preview: "%[1]s - @%[2]s passe sur ton profil plus souvent que la normale pour une amitié classique. Fréquence %[3]s. %[4]s",
		Detail: [3]string{
			"L'attention dépasse le cadre amical habituel.",
			"L'attention dépasse le cadre amical habituel.",
			"C'est significativement plus qu'un simple ami.",
		},
	},
	contexts.Business: {
		Title:   "Fréquence de surveillance",
		Preview: "%[1]s - @%[2]s effectue une veille %[3]s sur ton contenu. %[4]s Le monitoring est sérieux.",
		Detail: [3]string{
			"Suivi professionnel structuré.",
			"Suivi professionnel structuré.",
			"Comportement typique d'une stratégie de benchmark active.",
		},
	},
	contexts.Curiosity: {
		Title:   "Fréquence d'intérêt",
		Preview: "%[1]s - @%[2]s revient sur ton profil avec une fréquence %[3]s. %[4]s Ce n'est pas un simple passage hasardeux.",
		Detail: [3]string{
			"L'intérêt est constant.",
			"L'intérêt est constant.",
			"Cette personne te suit de très près.",
		},
	},
}

type moment struct {
	Window string
	Detail string
}

var momentTables = map[contexts.Type][3]moment{
	contexts.ExCrush: {
		{"Soirée et nuit (21h-2h)", "Pics d'activité tard le soir, typique d'un moment de nostalgie ou de réflexion personnelle."},
		{"Week-end principalement", "Activité concentrée les samedis et dimanches, quand le temps libre permet de penser à toi."},
		{"Fin de journée (18h-22h)", "Visites après le travail, moment où les pensées personnelles reprennent le dessus."},
	},
	contexts.Friend: {
		{"Début de soirée (19h-23h)", "Passages après la journée de travail, quand cette personne prend du temps personnel."},
		{"Pause déjeuner et soirée", "Deux pics d'activité détectés, intégration dans sa routine quotidienne."},
		{"Week-end et jours fériés", "Plus d'attention les jours de repos, quand le temps permet de checker ton activité."},
	},
	contexts.Business: {
		{"Heures de bureau (9h-18h)", "Activité concentrée pendant les horaires professionnels, veille structurée et méthodique."},
		{"Début de semaine (lundi-mardi)", "Pics en début de semaine, probablement intégré dans une routine de veille concurrentielle."},
		{"Matinée principalement", "Visites entre 9h et 12h, comportement d'analyse matinale du marché."},
	},
	contexts.Curiosity: {
		{"Soirée (20h-minuit)", "Activité en fin de journée, quand cette personne prend le temps de te regarder."},
		{"Aléatoire mais fréquent", "Pas de pattern fixe mais des visites régulières, signe d'un intérêt spontané."},
		{"Nuit et week-end", "Moments calmes propices à l'exploration de ton profil en toute discrétion."},
	},
}

type intention struct {
	Kind        string
	Description string
}

var (
	intentDiscreet   = intention{"Curiosité discrète", "Comportement d'observation sans engagement direct. Cette personne regarde de loin sans se manifester."}
	intentPersistent = intention{"Intérêt persistant", "Attention soutenue et régulière sur la durée. Pas un simple passage mais un suivi réel."}
	intentPassive    = intention{"Surveillance passive", "Monitoring silencieux de ton activité. Cette personne veut savoir ce que tu fais sans interagir."}
	intentReturning  = intention{"Retour d'attention", "Après une période d'absence, un regain d'intérêt marqué. Quelque chose a ravivé sa curiosité."}
)

// Weighted by repetition; indexed with floor(draw * len).
var intentionWeights = map[contexts.Type][4]intention{
	contexts.ExCrush:   {intentPassive, intentReturning, intentPersistent, intentReturning},
	contexts.Friend:    {intentDiscreet, intentPersistent, intentPersistent, intentReturning},
	contexts.Business:  {intentPassive, intentPassive, intentPersistent, intentDiscreet},
	contexts.Curiosity: {intentDiscreet, intentDiscreet, intentPersistent, intentPassive},
}

type attention struct {
	Level       string
	Description string
}

var (
	attentionHigh = [2]attention{
		{"Élevé", "Le niveau d'attention global est significativement au-dessus de la moyenne. Cette personne te suit activement."},
		{"Très élevé", "Niveau d'attention exceptionnel détecté. Tu occupes une place importante dans la routine de cette personne."},
	}
	attentionMedium = attention{"Modéré", "Niveau d'attention au-dessus de la normale. Cette personne te remarque et revient régulièrement sur ton profil."}
	attentionLow    = [2]attention{
		{"Modéré", "Un intérêt réel est présent, avec une attention régulière mais pas excessive."},
		{"Faible à modéré", "Attention présente mais discrète. Cette personne te garde dans son radar sans obsession."},
	}
)

var lastVisitDays = [4]string{"Hier", "Avant-hier", "Il y a 3 jours", "Il y a 2 jours"}

var lastVisitHours = map[contexts.Type][]int{
	contexts.ExCrush:   {21, 22, 23, 0, 1, 22, 23, 0},
	contexts.Friend:    {19, 20, 21, 22, 12, 13, 20, 21},
	contexts.Business:  {9, 10, 11, 14, 15, 16, 17, 10, 11},
	contexts.Curiosity: {18, 19, 20, 21, 22, 23, 14, 15},
}

var positiveAnswers = map[string]struct{}{
	"Oui je pense":     {},
	"Oui clairement":   {},
	"Oui bien":         {},
	"Concurrent":       {},
	"Client potentiel": {},
}
