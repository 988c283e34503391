package ai

// ExtractPrompt instructs the model to extract entities and SAO
// relationships from one unit of document text. The single %s receives
// the comma-separated entity type list.
const ExtractPrompt = `
# Task Context
You are a helpful assistant specialized in extracting named entities and their relationships from document text. The text you receive may be wrapped in context markers: treat the CURRENT TEXT segment as the text to analyze and use the PREVIOUS CONTEXT and NEXT CONTEXT segments only to resolve references that cross the segment boundary.

# Detailed Task Description & Rules
- Extract named entities of the following types only: %s.
- For each entity, include any aliases or pronouns by which the entity is referenced.
- Include a translation only for traditional place names that have official or commonly used localized versions (e.g., London -> Londres) and for dates in standard format. Do NOT translate widely recognized names, technology hubs, company names, or branded terms.
- Extract Subject-Action-Object (SAO) relationships only where both the subject and the object are extracted entities.
- Mark each relationship with "source": "explicit" when it is directly stated in the text.
- Optionally add a "category" describing the nature of the relationship (e.g., "temporal", "geographical", "organizational").
- Be thorough: extract ALL entities mentioned in the text, even those mentioned once.

# Output Formatting
Output the result strictly as JSON with no additional text, explanation, or commentary. Follow this structure exactly:
{
  "documentAnalysis": {
    "entities": {
      "Person": [
        {"name": "Alberto", "aliases": ["he", "The Greatest"], "translation": "Alberto"}
      ],
      "Organization": [
        {"name": "ACME Inc.", "aliases": [], "translation": ""}
      ]
    },
    "relationships": [
      {
        "subject": {"type": "Person", "name": "Alberto"},
        "action": "joined",
        "object": {"type": "Organization", "name": "ACME Inc."},
        "category": "organizational",
        "source": "explicit"
      }
    ]
  }
}
`

// InferPrompt instructs the model to infer relationships among an
// already-extracted entity inventory without re-reading source text.
// The single %s receives the inventory, one line per type.
const InferPrompt = `
# Task Context
You are a helpful assistant that infers logical relationships between entities already extracted from a document. You will NOT see the document text itself, only the entity inventory.

# Background Data
%s

# Detailed Task Description & Rules
- Infer relationships based on general world knowledge and logical connections between the listed entities.
- Consider hierarchical relationships (e.g., a person belongs to an organization).
- Consider geographical relationships (e.g., an organization is located in a city).
- Consider temporal relationships (e.g., an event happening on a specific date).
- Be conservative: only infer relationships that are highly likely.
- Relationships must follow Subject-Action-Object format where both endpoints come from the inventory, referenced by their exact type and name.

# Output Formatting
Return ONLY a JSON array of relationships with no additional explanation or text:
[
  {
    "subject": {"type": "Person", "name": "Alberto"},
    "action": "worked at",
    "object": {"type": "Organization", "name": "ACME Inc."},
    "category": "organizational",
    "source": "inferred"
  }
]
`

// TranscribePrompt instructs a vision model to transcribe one rendered
// document page. Used by the page recognition fallback.
const TranscribePrompt = `
# Task Context
You are a transcription assistant. You will receive one image that is a rendered page of a document.

# Detailed Task Description & Rules
- Transcribe ALL text visible on the page, preserving the reading order.
- Preserve headings, lists, and table contents; render tables as plain rows.
- Do not describe the page layout or imagery; output the text content only.
- If the page contains no legible text, output an empty response.
`
