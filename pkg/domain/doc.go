/*
Package domain contains the core reading-data models and the saccade reconstruction logic.

It defines the entities derived from an eye-tracking recording of one participant reading one
stimulus. The package is kept pure and free of I/O or persistence, following Hexagonal
Architecture principles: parsers, stores and transports live in the adapters.

# Key Entities

  - Point: A (character, line) position in the stimulus, ordered in reading order.
  - Fixation: A gaze pause, optionally localized to a Point and a Region.
  - Saccade: An eye movement between two fixations of the same Trial.
  - Item / Region: The stimulus text and its sub-divisions (consumed, not computed, here).
  - Trial: One participant's reading pass over one Item. Built once from an ordered fixation
    list; construction re-indexes the fixations and derives the saccades.
*/
package domain
