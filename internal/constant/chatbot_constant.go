package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	DefaultSessionID = "default"

	// QAPromptTemplate is filled with the retrieved context and the augmented question
	QAPromptTemplate = `Vous êtes un assistant virtuel intelligent qui utilise un système RAG (Retrieval-Augmented Generation) pour fournir des réponses précises et contextuelles.

INSTRUCTIONS IMPORTANTES:
- Utilisez TOUJOURS les informations du contexte fourni ci-dessous pour répondre à la question
- Si le contexte contient des informations pertinentes, basez votre réponse sur ces informations
- Répondez de manière claire, détaillée et utile en français
- Si le contexte ne contient pas d'informations pertinentes, dites-le poliment mais essayez quand même de répondre avec vos connaissances générales si approprié

CONTEXTE RÉCUPÉRÉ DEPUIS LA BASE DE CONNAISSANCES:
%s

QUESTION DE L'UTILISATEUR: %s

RÉPONSE (en français, détaillée et basée sur le contexte fourni):`

	// JobIntentExtractionPrompt expects the raw user message
	JobIntentExtractionPrompt = `Analyse ce message utilisateur et détermine s'il s'agit d'une demande de recherche d'emploi.
Si oui, extrais les informations suivantes au format JSON:
- query: le titre du poste ou les compétences recherchées (ex: "développeur Python", "data scientist")
- country: le code pays ISO à 2 lettres si mentionné (ex: "fr" pour France, "de" pour Allemagne, "es" pour Espagne, "it" pour Italie, "be" pour Belgique, "ch" pour Suisse, "ca" pour Canada, "us" pour USA). Si non mentionné, laisse null.
- remote: true si télétravail/remote est mentionné, sinon false
- employment_type: FULLTIME, PARTTIME, CONTRACTOR, ou INTERN si mentionné

Message: "%s"

Réponds UNIQUEMENT avec un JSON valide, ou "null" si ce n'est pas une recherche d'emploi.
Format attendu: {"query": "...", "country": "fr", "remote": false, "employment_type": "..."}`

	CurrentResultsInstruction = "Présente ces offres d'emploi de manière claire et structurée à l'utilisateur, avec le titre, l'entreprise, la localisation et le lien pour postuler."

	NoKnowledgeContext = "Aucun document pertinent trouvé dans la base de connaissances."

	// ChatApologyAnswer is returned when both generation attempts failed
	ChatApologyAnswer = "Désolé, une erreur s'est produite. Veuillez réessayer."

	// RetryErrorMessage marks an answer produced without retrieval
	RetryErrorMessage = "RAG unavailable, direct LLM answer"

	JobSearchUnavailableNotice = "=== Job search ===\nThe job search service is currently unavailable. Tell the user the search could not be performed right now and suggest trying again later."
)
