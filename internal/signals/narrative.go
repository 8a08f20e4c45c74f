package signals

import (
	"fmt"
	"strings"

	"github.com/Milo-adonos/SilentView/internal/contexts"
)

// PersonalizedTitle picks the headline from the context, the declared answer
// and whether the prediction is high. It never draws from the PRNG.
func PersonalizedTitle(ct contexts.Type, handle, answer string, prediction int) Title {
	high := predictionBucket(prediction) == bucketHigh
	at := "@" + handle

	switch ct {
	case contexts.ExCrush:
		switch {
		case answer == "Oui je pense" && high:
			return Title{"Ton intuition était juste...", fmt.Sprintf("Nos algorithmes confirment une activité élevée de la part de %s. L'intensité détectée correspond à ce que tu soupçonnais.", at)}
		case answer == "Oui je pense":
			return Title{"Tu avais raison de te poser la question...", fmt.Sprintf("%s semble garder un œil sur ton profil. Les signaux détectés confirment tes soupçons.", at)}
		case answer == "J'ai des doutes" && high:
			return Title{"Tes doutes étaient fondés...", fmt.Sprintf("L'analyse révèle une attention particulière de %s envers ton profil. Plus que ce que tu imaginais.", at)}
		}
		return Title{"Résultats intéressants pour", fmt.Sprintf("Notre analyse a détecté des signaux significatifs concernant %s. Découvre ce que ça révèle.", at)}

	case contexts.Friend:
		switch {
		case answer == "Oui clairement" && high:
			return Title{"Tu avais remarqué quelque chose...", fmt.Sprintf("Le changement de comportement que tu as noté se confirme. %s te surveille plus qu'avant.", at)}
		case answer == "Oui clairement":
			return Title{"Ton ressenti était correct...", fmt.Sprintf("%s a effectivement changé son comportement envers toi. Les données le confirment.", at)}
		case answer == "Peut-être":
			return Title{"Ton instinct ne te trompait pas...", fmt.Sprintf("Il y a bien quelque chose. %s montre un intérêt inhabituel pour ton activité.", at)}
		}
		return Title{"Analyse terminée pour", fmt.Sprintf("Des patterns intéressants ont été détectés concernant l'activité de %s.", at)}

	case contexts.Business:
		title := "Surveillance active détectée..."
		switch answer {
		case "Concurrent":
			title = "Veille concurrentielle confirmée..."
		case "Client potentiel":
			title = "Intérêt commercial détecté..."
		case "Influenceur":
			title = "Attention particulière identifiée..."
		}
		if high {
			return Title{title, fmt.Sprintf("%s suit de près ton activité. Le niveau de surveillance est supérieur à la moyenne.", at)}
		}
		return Title{title, fmt.Sprintf("%s garde un œil sur ton profil. Découvre les détails de cette veille.", at)}
	}

	switch {
	case answer == "Oui bien" && high:
		return Title{"Cette personne te surveille...", fmt.Sprintf("Tu connais %s et visiblement, l'intérêt est réciproque. L'activité détectée est significative.", at)}
	case answer == "Oui bien":
		return Title{"Un intérêt caché détecté...", fmt.Sprintf("%s que tu connais semble te surveiller discrètement. Les signaux sont clairs.", at)}
	case answer == "Vaguement" && high:
		return Title{"Plus qu'une simple connaissance...", fmt.Sprintf("%s s'intéresse à toi plus que tu ne le pensais. L'analyse révèle des visites fréquentes.", at)}
	}
	return Title{"Résultats pour", fmt.Sprintf("Notre algorithme a détecté des signaux significatifs concernant %s.", at)}
}

// Interpretation templates reference the target as {handle}.
var interpretations = map[contexts.Type]Interpretation{
	contexts.Curiosity: {
		Main:       "L'analyse des patterns comportementaux de {handle} révèle un intérêt marqué pour votre profil. La fréquence des visites et le timing des interactions sont supérieurs à la moyenne, ce qui suggère que cette personne suit activement votre activité sur la plateforme.",
		Prediction: "Selon nos algorithmes, il y a une forte probabilité que {handle} continue à suivre votre activité. Si vous engagez la conversation, les chances d'une réponse positive sont estimées à plus de 75%.",
	},
	contexts.ExCrush: {
		Main:       "Les données révèlent que {handle} maintient une surveillance discrète mais constante de votre profil. Ce comportement est typique d'une personne qui n'a pas complètement tourné la page et qui ressent encore un attachement émotionnel.",
		Prediction: "Les patterns détectés suggèrent que {handle} pourrait tenter de reprendre contact dans les prochaines semaines, surtout si vous publiez du contenu significatif.",
	},
	contexts.Friend: {
		Main:       "L'analyse confirme un changement de comportement de la part de {handle}. Les signaux d'engagement, la rapidité des réponses et l'attention portée à vos publications dépassent largement le cadre d'une simple amitié.",
		Prediction: "Nos algorithmes estiment à plus de 80% les chances que {handle} réponde favorablement à une approche de votre part. Le timing actuel est optimal.",
	},
	contexts.Business: {
		Main:       "L'analyse du comportement numérique de {handle} révèle une veille active et structurée. Son activité en ligne montre un suivi méthodique de votre contenu professionnel.",
		Prediction: "Les indicateurs suggèrent une attention soutenue. Cette personne continuera probablement à suivre votre activité professionnelle dans les prochaines semaines.",
	},
}

// InterpretationFor returns the per-context interpretation, the curiosity one
// for anything else.
func InterpretationFor(ct contexts.Type, handle string) Interpretation {
	tpl, ok := interpretations[ct]
	if !ok {
		tpl = interpretations[contexts.Curiosity]
	}
	r := strings.NewReplacer("{handle}", "@"+handle)
	return Interpretation{
		Main:       r.Replace(tpl.Main),
		Prediction: r.Replace(tpl.Prediction),
	}
}
